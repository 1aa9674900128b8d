package resolver

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/maproute/api/schemas"
)

// CheapestRoute selects the cheapest route when passed as the route index of
// Eval, EvalMagnitude or Describe.
const CheapestRoute = -1

func errRouteIndex(s *Step, index int) error {
	return fmt.Errorf("%w: %d not in [0, %d) for concept '%s'", ErrRouteIndex, index, s.NumRoutes(), s.OutputIRI)
}

// values materializes the inputs of an alternative for one local route
// index. It returns the quantities in input insertion order plus the bare
// magnitudes keyed by input name (consumed by cost functions).
func (a *Alternative) values(rctx *resolveContext, local int) ([]schemas.Quantity, map[string]any, error) {
	ordered := make([]schemas.Quantity, 0, len(a.Inputs))
	magnitudes := make(map[string]any, len(a.Inputs))

	for _, in := range a.Inputs {
		var q schemas.Quantity

		if in.Value != nil {
			mag, err := in.Value.Resolve()
			if err != nil {
				return nil, nil, fmt.Errorf("resolving source value for '%s': %w", in.Name, err)
			}
			q = rctx.quantity(mag, in.Value.Unit)
		} else {
			// Mixed-radix decode against the sibling route counts, in the
			// same insertion order the ranker used to combine them.
			n := in.Step.NumRoutes()
			sub := local % n
			local /= n

			var err error
			q, err = in.Step.evalRoute(sub)
			if err != nil {
				return nil, nil, err
			}
			if in.Step.OutputUnit != "" {
				q, err = q.To(in.Step.OutputUnit)
				if err != nil {
					return nil, nil, fmt.Errorf("converting '%s' to declared unit '%s': %w", in.Name, in.Step.OutputUnit, err)
				}
			}
		}

		ordered = append(ordered, q)
		magnitudes[in.Name] = q.Magnitude()
	}
	return ordered, magnitudes, nil
}

// evalRoute evaluates one route of this step without applying the step's own
// declared output unit; the caller owns that conversion.
func (s *Step) evalRoute(index int) (schemas.Quantity, error) {
	alt, local, err := s.alternativeFor(index)
	if err != nil {
		return nil, err
	}
	ordered, _, err := alt.values(s.rctx, local)
	if err != nil {
		return nil, err
	}

	if alt.Kind == schemas.StepFunction {
		if s.rctx.funcs == nil {
			return nil, fmt.Errorf("%w: '%s' (no function repository injected)", ErrUnknownFunction, alt.FunctionID)
		}
		fn, ok := s.rctx.funcs.Function(alt.FunctionID)
		if !ok {
			return nil, fmt.Errorf("%w: '%s'", ErrUnknownFunction, alt.FunctionID)
		}
		q, err := fn(ordered)
		if err != nil {
			return nil, fmt.Errorf("invoking function '%s' for '%s': %w", alt.FunctionID, s.OutputIRI, err)
		}
		return q, nil
	}

	// A pure relation step passes its single resolved value through.
	if len(ordered) != 1 {
		return nil, fmt.Errorf("relation step for '%s' resolved %d values, want exactly 1", s.OutputIRI, len(ordered))
	}
	return ordered[0], nil
}

// Eval evaluates one route of this step. Pass CheapestRoute to let the
// ranker choose; pass a non-empty unit to convert the result. Only the
// selected route's sources and functions are touched.
func (s *Step) Eval(routeIndex int, unit string) (schemas.Quantity, error) {
	n := s.NumRoutes()
	if n == 0 {
		return nil, fmt.Errorf("%w: concept '%s'", ErrNoRoutes, s.OutputIRI)
	}
	if routeIndex == CheapestRoute {
		ranked, err := s.LowestCosts(1)
		if err != nil {
			return nil, err
		}
		routeIndex = ranked[0].Index
	} else if routeIndex < 0 || routeIndex >= n {
		return nil, errRouteIndex(s, routeIndex)
	}

	q, err := s.evalRoute(routeIndex)
	if err != nil {
		return nil, err
	}
	if s.OutputUnit != "" {
		if q, err = q.To(s.OutputUnit); err != nil {
			return nil, fmt.Errorf("converting '%s' to declared unit '%s': %w", s.OutputIRI, s.OutputUnit, err)
		}
	}
	if unit != "" {
		if q, err = q.To(unit); err != nil {
			return nil, fmt.Errorf("converting '%s' to requested unit '%s': %w", s.OutputIRI, unit, err)
		}
	}
	return q, nil
}

// EvalMagnitude evaluates a route and strips the result to its bare
// magnitude.
func (s *Step) EvalMagnitude(routeIndex int, unit string) (any, error) {
	q, err := s.Eval(routeIndex, unit)
	if err != nil {
		return nil, err
	}
	return q.Magnitude(), nil
}

// RouteInputs returns the source concepts consumed by the given route, in
// traversal order.
func (s *Step) RouteInputs(routeIndex int) ([]string, error) {
	alt, local, err := s.alternativeFor(routeIndex)
	if err != nil {
		return nil, err
	}
	var concepts []string
	for _, in := range alt.Inputs {
		if in.Value != nil {
			concepts = append(concepts, in.Value.ConceptIRI)
			continue
		}
		n := in.Step.NumRoutes()
		sub := local % n
		local /= n
		subConcepts, err := in.Step.RouteInputs(sub)
		if err != nil {
			return nil, err
		}
		concepts = append(concepts, subConcepts...)
	}
	return concepts, nil
}

// Describe renders a human-readable dump of one route. A negative index
// dumps every route.
func (s *Step) Describe(routeIndex int) (string, error) {
	var b strings.Builder
	if routeIndex < 0 {
		n := s.NumRoutes()
		fmt.Fprintf(&b, "%s: %d route(s)\n", s.rctx.name(s.OutputIRI), n)
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "route %d:\n", i)
			if err := s.describeRoute(&b, i, 1); err != nil {
				return "", err
			}
		}
		return b.String(), nil
	}
	if err := s.describeRoute(&b, routeIndex, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Step) describeRoute(b *strings.Builder, index, depth int) error {
	alt, local, err := s.alternativeFor(index)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", depth)
	switch {
	case alt.Kind == schemas.StepFunction:
		fmt.Fprintf(b, "%s%s <- %s(%s)\n", indent, s.rctx.name(s.OutputIRI), s.rctx.name(alt.FunctionID), alt.Kind)
	default:
		fmt.Fprintf(b, "%s%s <- (%s)\n", indent, s.rctx.name(s.OutputIRI), alt.Kind)
	}
	for _, in := range alt.Inputs {
		if in.Value != nil {
			fmt.Fprintf(b, "%s  %s [source, cost=%g]\n", indent, s.rctx.name(in.Value.ConceptIRI), in.Value.Cost)
			continue
		}
		n := in.Step.NumRoutes()
		sub := local % n
		local /= n
		if err := in.Step.describeRoute(b, sub, depth+1); err != nil {
			return err
		}
	}
	return nil
}
