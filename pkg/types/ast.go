package types

// NodeType identifies the type of an AST node.
type NodeType string

// Null represents the null literal, distinct from an undefined (nil) result.
type Null struct{}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// NullValue is the singleton value used for the null literal.
var NullValue = Null{}

// AST node types.
const (
	// Constants
	NodeString  NodeType = "string"
	NodeNumber  NodeType = "number"
	NodeBoolean NodeType = "boolean"
	NodeNull    NodeType = "null"
	NodePattern NodeType = "pattern" // /glob*/

	// References
	NodeVariable  NodeType = "variable"  // lambda or root variable
	NodeParameter NodeType = "parameter" // $0, $name

	// Logical and relational operators
	NodeNot       NodeType = "not"
	NodeAnd       NodeType = "and"
	NodeOr        NodeType = "or"
	NodeEquals    NodeType = "equals"
	NodeLess      NodeType = "less"
	NodeGreater   NodeType = "greater"
	NodeMatches   NodeType = "matches" // ~=
	NodeCondition NodeType = "condition"

	// Access and construction
	NodeMember   NodeType = "member"   // target.name(args...)
	NodeAt       NodeType = "at"       // target[index]
	NodeArray    NodeType = "array"    // [a, b]
	NodeFunction NodeType = "function" // version('1.0')
	NodeLambda   NodeType = "lambda"

	// Collection operators
	NodeSelect   NodeType = "select"
	NodeCollect  NodeType = "collect"
	NodeExists   NodeType = "exists"
	NodeFirst    NodeType = "first"
	NodeAll      NodeType = "all"
	NodeTraverse NodeType = "traverse"
	NodeLatest   NodeType = "latest"
	NodeFlatten  NodeType = "flatten"
	NodeLimit    NodeType = "limit"
	NodeUnique   NodeType = "unique"
)

// IsCollectionOp reports whether t is one of the collection operators.
func (t NodeType) IsCollectionOp() bool {
	switch t {
	case NodeSelect, NodeCollect, NodeExists, NodeFirst, NodeAll,
		NodeTraverse, NodeLatest, NodeFlatten, NodeLimit, NodeUnique:
		return true
	}
	return false
}

// Variable is the binding site of a name. Variable nodes point at the
// Variable they were resolved to at parse time; the evaluator looks bindings
// up by pointer identity, never by name.
type Variable struct {
	Name string
}

// Assignment binds a curried lambda variable to a value computed once in the
// enclosing scope, before the lambda iterates.
type Assignment struct {
	Variable *Variable
	Value    *ASTNode
}

// FunctionImpl is the implementation of an entry in the function table.
type FunctionImpl func(args []interface{}) (interface{}, error)

// ASTNode represents a node in the Abstract Syntax Tree.
//
// Field usage per node type:
//
//	constants    Value
//	variable     Variable
//	parameter    Value (int for $0, string for $name)
//	not          LHS
//	and, or      Operands
//	relational   LHS, RHS
//	condition    LHS (cond), RHS (then), Else
//	member       LHS (target), Value (name), Arguments
//	at           LHS (target), RHS (index)
//	array        Operands
//	function     Value (name), Func, Arguments
//	lambda       Variable (each), Assignments, RHS (body)
//	collection   LHS (source), RHS (lambda, count or key lambda; may be nil)
type ASTNode struct {
	Type     NodeType
	Value    interface{}
	Position int

	LHS       *ASTNode
	RHS       *ASTNode
	Else      *ASTNode
	Operands  []*ASTNode
	Arguments []*ASTNode

	Variable    *Variable
	Assignments []*Assignment
	Func        FunctionImpl
}

// NewASTNode creates a new AST node of the specified type.
func NewASTNode(nodeType NodeType, position int) *ASTNode {
	return &ASTNode{
		Type:     nodeType,
		Position: position,
	}
}

// Name returns the member or function name carried in Value.
func (n *ASTNode) Name() string {
	s, _ := n.Value.(string)
	return s
}

// String returns a string representation of the node type.
func (n *ASTNode) String() string {
	return string(n.Type)
}
