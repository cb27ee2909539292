package catalog

import (
	"github.com/sandrolain/catql/pkg/evaluator"
	"github.com/sandrolain/catql/pkg/model"
	"github.com/sandrolain/catql/pkg/types"
)

// idIndex answers "x.id == e" for a string e.
type idIndex struct {
	c *Catalog
}

func (ix idIndex) Candidates(ec *evaluator.EvalContext, each *types.Variable, node *types.ASTNode) (types.Iterator, bool) {
	probe, ok := evaluator.ProbeOf(each, node)
	if !ok || probe.Member != "id" || probe.Op != types.NodeEquals {
		return nil, false
	}
	id, ok := ec.Evaluate(probe.Operand).(string)
	if !ok {
		return nil, false
	}
	return ix.c.withID(id), true
}

// capabilityIndex answers "x ~= r" and "x.providedCapabilities ~= r" for a
// requirement r. Candidates provide a capability with the namespace and name
// of r; the version range is left to the predicate.
type capabilityIndex struct {
	c *Catalog
}

func (ix capabilityIndex) Candidates(ec *evaluator.EvalContext, each *types.Variable, node *types.ASTNode) (types.Iterator, bool) {
	probe, ok := evaluator.ProbeOf(each, node)
	if !ok || probe.Member != evaluator.MemberProvidedCapabilities || probe.Op != types.NodeMatches {
		return nil, false
	}
	req, ok := ec.Evaluate(probe.Operand).(model.Requirement)
	if !ok {
		return nil, false
	}
	return ix.c.withCapability(req.Namespace, req.Name), true
}
