package types

// Walk visits node and its children depth-first. If fn returns false the
// children of that node are skipped.
func Walk(node *ASTNode, fn func(*ASTNode) bool) {
	if node == nil || !fn(node) {
		return
	}
	Walk(node.LHS, fn)
	Walk(node.RHS, fn)
	Walk(node.Else, fn)
	for _, op := range node.Operands {
		Walk(op, fn)
	}
	for _, arg := range node.Arguments {
		Walk(arg, fn)
	}
	for _, a := range node.Assignments {
		Walk(a.Value, fn)
	}
}

// References reports whether node contains a reference to v.
func References(node *ASTNode, v *Variable) bool {
	found := false
	Walk(node, func(n *ASTNode) bool {
		if found {
			return false
		}
		if n.Type == NodeVariable && n.Variable == v {
			found = true
			return false
		}
		return true
	})
	return found
}

// Conjuncts returns the operands of a top-level conjunction, or node itself.
func Conjuncts(node *ASTNode) []*ASTNode {
	if node == nil {
		return nil
	}
	if node.Type == NodeAnd {
		return node.Operands
	}
	return []*ASTNode{node}
}

// IsVariable reports whether node is a reference to v.
func IsVariable(node *ASTNode, v *Variable) bool {
	return node != nil && node.Type == NodeVariable && node.Variable == v
}
