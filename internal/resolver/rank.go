package resolver

import (
	"fmt"
	"sort"
)

// RouteCost is one ranked candidate: the total cost of a route and its dense
// route index.
type RouteCost struct {
	Cost  float64
	Index int
}

// LowestCosts returns up to k (cost, index) pairs ascending by cost. At every
// composition level only the k cheapest partial candidates are kept, so the
// full route cross-product is never enumerated.
//
// The per-level truncation is a deliberate greedy approximation: a candidate
// outside a child's top-k could in principle combine with siblings to beat a
// kept one. Bounded running time wins over global optimality here.
func (s *Step) LowestCosts(k int) ([]RouteCost, error) {
	if k < 1 {
		k = 1
	}
	if s.NumRoutes() == 0 {
		return nil, fmt.Errorf("%w: concept '%s'", ErrNoRoutes, s.OutputIRI)
	}
	return s.lowestCosts(k)
}

func (s *Step) lowestCosts(k int) ([]RouteCost, error) {
	var ranked []RouteCost

	// base is the running sum of true route counts of the alternatives
	// already processed; it offsets local indices into the step-global dense
	// numbering.
	base := 0
	for _, alt := range s.Alternatives {
		n := alt.numRoutes()
		if n == 0 {
			// Dead branch: contributes no routes and no index space.
			continue
		}

		cands := []RouteCost{{Cost: 0, Index: 0}}
		stride := 1
		for _, in := range alt.Inputs {
			if in.Value != nil {
				for i := range cands {
					cands[i].Cost += in.Value.Cost
				}
				continue
			}

			child := in.Step
			sub, err := child.lowestCosts(k)
			if err != nil {
				return nil, err
			}
			// Combination walks children in index order so that it agrees
			// with the mixed-radix decoding used by evaluation.
			sort.Slice(sub, func(i, j int) bool { return sub[i].Index < sub[j].Index })

			next := make([]RouteCost, 0, len(cands)*len(sub))
			for _, c := range cands {
				for _, sc := range sub {
					next = append(next, RouteCost{
						Cost:  c.Cost + sc.Cost,
						Index: c.Index + sc.Index*stride,
					})
				}
			}
			cands = truncateLowest(next, k)

			// The stride advances by the child's true route count, not the
			// truncated k, so indices stay valid for decoding.
			stride *= child.NumRoutes()
		}

		if alt.Cost.Fn != nil {
			// A callable cost needs the actual resolved magnitudes of each
			// surviving candidate, so those inputs are materialized even
			// though we are only ranking.
			for i := range cands {
				_, magnitudes, err := alt.values(s.rctx, cands[i].Index)
				if err != nil {
					return nil, err
				}
				c, err := alt.Cost.Fn(magnitudes)
				if err != nil {
					return nil, fmt.Errorf("evaluating cost function for '%s': %w", s.OutputIRI, err)
				}
				cands[i].Cost += c
			}
		} else {
			for i := range cands {
				cands[i].Cost += alt.Cost.Fixed
			}
		}

		for i := range cands {
			cands[i].Index += base
		}
		ranked = append(ranked, cands...)
		base += n
	}

	return truncateLowest(ranked, k), nil
}

// truncateLowest sorts by (cost, index) and keeps the k cheapest entries.
func truncateLowest(cands []RouteCost, k int) []RouteCost {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Cost != cands[j].Cost {
			return cands[i].Cost < cands[j].Cost
		}
		return cands[i].Index < cands[j].Index
	})
	if len(cands) > k {
		cands = cands[:k]
	}
	return cands
}
