package evaluator

import (
	"github.com/sandrolain/catql/pkg/types"
)

// MemberProvidedCapabilities is the index member consulted for "x ~= e".
const MemberProvidedCapabilities = "providedCapabilities"

// IndexProvider gives access to named indexes over everything. It must be
// safe for concurrent read-only use.
type IndexProvider interface {
	// Index returns the index for a member name, if there is one.
	Index(member string) (Index, bool)
}

// Index narrows a scan over everything.
type Index interface {
	// Candidates returns the elements that may satisfy node, a conjunct of
	// the predicate in which each is the variable bound to the element.
	// ok is false when the index cannot help, which falls back to a full
	// scan. The candidates may over-approximate; the full predicate is
	// always applied to them.
	Candidates(ec *EvalContext, each *types.Variable, node *types.ASTNode) (it types.Iterator, ok bool)
}

// Probe describes a conjunct that an index may answer.
type Probe struct {
	// Member is the index name.
	Member string
	// Op is types.NodeEquals or types.NodeMatches.
	Op types.NodeType
	// Operand is the expression the member is compared with. It does not
	// reference the each variable.
	Operand *types.ASTNode
	// Node is the conjunct itself.
	Node *types.ASTNode
}

// ProbeOf recognizes the indexable conjunct shapes
//
//	x.m == e    e == x.m    x.m ~= e    x ~= e
//
// where e does not reference x. For "x ~= e" the member is
// providedCapabilities.
func ProbeOf(each *types.Variable, node *types.ASTNode) (Probe, bool) {
	if node == nil || (node.Type != types.NodeEquals && node.Type != types.NodeMatches) {
		return Probe{}, false
	}

	probe := Probe{Op: node.Type, Node: node}
	lhs, rhs := node.LHS, node.RHS
	if node.Type == types.NodeEquals && !isEachMember(lhs, each) && isEachMember(rhs, each) {
		lhs, rhs = rhs, lhs
	}

	switch {
	case isEachMember(lhs, each):
		probe.Member = lhs.Name()
	case node.Type == types.NodeMatches && types.IsVariable(lhs, each):
		probe.Member = MemberProvidedCapabilities
	default:
		return Probe{}, false
	}
	if types.References(rhs, each) {
		return Probe{}, false
	}
	probe.Operand = rhs
	return probe, true
}

func isEachMember(n *types.ASTNode, each *types.Variable) bool {
	return n != nil && n.Type == types.NodeMember && len(n.Arguments) == 0 && types.IsVariable(n.LHS, each)
}

// probes returns the indexable top-level conjuncts of body.
func probes(each *types.Variable, body *types.ASTNode) []Probe {
	var out []Probe
	for _, c := range types.Conjuncts(body) {
		if p, ok := ProbeOf(each, c); ok {
			out = append(out, p)
		}
	}
	return out
}

// candidates returns src narrowed by the first index that accepts one of
// the indexable conjuncts of body. The index is consulted again on every
// pass; without a usable index every pass is a full scan of src.
func (c *EvalContext) candidates(src types.Iterable, each *types.Variable, body *types.ASTNode) types.Iterable {
	provider := c.exec.indexes
	if provider == nil {
		return src
	}
	list := probes(each, body)
	if len(list) == 0 {
		return src
	}

	e := c.evaluator
	return types.IterableFunc(func() types.Iterator {
		for _, p := range list {
			idx, ok := provider.Index(p.Member)
			if !ok {
				continue
			}
			it, ok := idx.Candidates(c, each, p.Node)
			e.metrics.ObserveIndex(p.Member, ok)
			if ok && it != nil {
				e.debug("index hit", "member", p.Member, "position", p.Node.Position)
				return c.exec.guardIterator(it)
			}
		}
		e.debug("index fallback to full scan", "probes", len(list))
		return src.Iterator()
	})
}
