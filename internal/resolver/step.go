package resolver

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/maproute/api/schemas"
)

// Step is one node in the resolution tree, producing the value of one
// concept. Steps are mutated only while Resolve builds the tree; afterwards
// they are read-only and safe to rank and evaluate repeatedly.
type Step struct {
	// OutputIRI is the concept this step produces.
	OutputIRI string
	// OutputUnit is the unit annotated on the output concept, if any.
	OutputUnit string
	// Kind tags the relation or mechanism through which this step was
	// discovered from its parent. Assigned once, at discovery.
	Kind schemas.StepKind
	// Alternatives are the independent ways of populating this step. Their
	// order fixes the dense route numbering.
	Alternatives []*Alternative

	rctx *resolveContext
}

// Alternative is one way to populate a step: an ordered set of named inputs
// plus the mechanism that contributed it. A multi-input function contributes
// exactly one joined alternative; each single-relation neighbor contributes
// its own.
type Alternative struct {
	Kind schemas.StepKind
	// FunctionID is set when Kind is StepFunction.
	FunctionID string
	// Cost is this alternative's own cost, added on top of its inputs'.
	Cost schemas.Cost
	// Inputs in insertion order. The order fixes the mixed-radix route
	// encoding within this alternative.
	Inputs []NamedInput
}

// NamedInput is either a terminal value or a child step. Exactly one of
// Value and Step is set.
type NamedInput struct {
	Name  string
	Value *schemas.Value
	Step  *Step
}

// resolveContext carries the evaluation collaborators shared by every step
// of one resolution tree.
type resolveContext struct {
	funcs    schemas.FunctionRepo
	quantity schemas.QuantityFactory
	names    map[string]string
	log      *zap.Logger
}

// name returns the display name for a node, falling back to its id.
func (c *resolveContext) name(node string) string {
	if n, ok := c.names[node]; ok {
		return n
	}
	return node
}

// NumRoutes returns the total number of distinct routes below this step: the
// sum over alternatives of the product of each input's own route count, with
// terminal values counting as 1.
func (s *Step) NumRoutes() int {
	total := 0
	for _, alt := range s.Alternatives {
		total += alt.numRoutes()
	}
	return total
}

// numRoutes is the alternative's true route count. An alternative whose
// inputs were all cut by the cycle guard is a dead branch and counts zero.
func (a *Alternative) numRoutes() int {
	if len(a.Inputs) == 0 {
		return 0
	}
	n := 1
	for _, in := range a.Inputs {
		if in.Step != nil {
			n *= in.Step.NumRoutes()
		}
	}
	return n
}

// alternativeFor locates the alternative owning the given dense route index
// and returns it together with the residual index local to it.
func (s *Step) alternativeFor(index int) (*Alternative, int, error) {
	if index < 0 || index >= s.NumRoutes() {
		return nil, 0, errRouteIndex(s, index)
	}
	local := index
	for _, alt := range s.Alternatives {
		n := alt.numRoutes()
		if local < n {
			return alt, local, nil
		}
		local -= n
	}
	// Unreachable: the range check above guarantees an owner exists.
	return nil, 0, errRouteIndex(s, index)
}
