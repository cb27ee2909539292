package evaluator

import (
	"github.com/sandrolain/catql/pkg/types"
)

// evalNode is the main evaluation dispatcher.
func (e *Evaluator) evalNode(node *types.ASTNode, ec *EvalContext) interface{} {
	if node == nil {
		return nil
	}

	switch node.Type {
	case types.NodeString, types.NodeNumber, types.NodeBoolean, types.NodePattern:
		return node.Value
	case types.NodeNull:
		return types.NullValue

	case types.NodeVariable:
		v, _ := ec.Lookup(node.Variable)
		return v
	case types.NodeParameter:
		v, _ := ec.Param(node.Value)
		return v

	case types.NodeNot:
		return !isTrue(e.evalNode(node.LHS, ec))
	case types.NodeAnd:
		for _, op := range node.Operands {
			if !isTrue(e.evalNode(op, ec)) {
				return false
			}
		}
		return true
	case types.NodeOr:
		for _, op := range node.Operands {
			if isTrue(e.evalNode(op, ec)) {
				return true
			}
		}
		return false

	case types.NodeEquals:
		return equals(e.evalNode(node.LHS, ec), e.evalNode(node.RHS, ec))
	case types.NodeLess:
		c, ok := compare(e.evalNode(node.LHS, ec), e.evalNode(node.RHS, ec))
		return ok && c < 0
	case types.NodeGreater:
		c, ok := compare(e.evalNode(node.LHS, ec), e.evalNode(node.RHS, ec))
		return ok && c > 0
	case types.NodeMatches:
		return matches(e.evalNode(node.LHS, ec), e.evalNode(node.RHS, ec))

	case types.NodeCondition:
		if isTrue(e.evalNode(node.LHS, ec)) {
			return e.evalNode(node.RHS, ec)
		}
		return e.evalNode(node.Else, ec)

	case types.NodeMember:
		return e.evalMember(node, ec)
	case types.NodeAt:
		return at(e.evalNode(node.LHS, ec), e.evalNode(node.RHS, ec))
	case types.NodeArray:
		return e.evalArgs(node.Operands, ec)
	case types.NodeFunction:
		return e.evalFunction(node, ec)

	case types.NodeSelect:
		return e.evalSelect(node, ec)
	case types.NodeCollect:
		return e.evalCollect(node, ec)
	case types.NodeExists:
		return e.evalExists(node, ec)
	case types.NodeAll:
		return e.evalAll(node, ec)
	case types.NodeFirst:
		return e.evalFirst(node, ec)
	case types.NodeTraverse:
		return e.evalTraverse(node, ec)
	case types.NodeLatest:
		return e.evalLatest(node, ec)
	case types.NodeFlatten:
		return e.evalFlatten(node, ec)
	case types.NodeLimit:
		return e.evalLimit(node, ec)
	case types.NodeUnique:
		return e.evalUnique(node, ec)

	default:
		e.debug("unsupported node", "type", node.Type, "position", node.Position)
		return nil
	}
}

func (e *Evaluator) evalArgs(nodes []*types.ASTNode, ec *EvalContext) []interface{} {
	values := make([]interface{}, len(nodes))
	for i, n := range nodes {
		values[i] = e.evalNode(n, ec)
	}
	return values
}

// evalMember evaluates target.name(args) through the member table.
func (e *Evaluator) evalMember(node *types.ASTNode, ec *EvalContext) interface{} {
	target := e.evalNode(node.LHS, ec)
	args := e.evalArgs(node.Arguments, ec)
	return invokeMember(target, node.Name(), args)
}

// evalFunction calls a function table entry. A failing call is undefined.
func (e *Evaluator) evalFunction(node *types.ASTNode, ec *EvalContext) interface{} {
	if node.Func == nil {
		return nil
	}
	args := e.evalArgs(node.Arguments, ec)
	out, err := node.Func(args)
	if err != nil {
		e.debug("function call failed", "function", node.Name(), "position", node.Position, "error", err)
		return nil
	}
	return out
}
