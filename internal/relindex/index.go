// Package relindex builds the cached adjacency views over the relation graph
// that the resolver walks. The index is populated in a single pass over the
// triple source and is read-only afterwards.
package relindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/xkilldash9x/maproute/api/schemas"
	"go.uber.org/zap"
)

// ErrInconsistentIndex is returned when an individual carries more than one
// instance-of assignment. Duplicate assignments manufacture ambiguous walks,
// so this is fatal at build time.
var ErrInconsistentIndex = errors.New("inconsistent relation index")

// Index holds the adjacency and attribute views the route builder consumes.
// Slices preserve the order the source returned the triples in, which keeps
// route numbering deterministic for a given graph.
type Index struct {
	// MapsTo and InvMapsTo are the forward and inverse "maps-to" views.
	MapsTo    map[string][]string
	InvMapsTo map[string][]string

	// InvSubClassOf lists the subclasses of each class. Only the inverse
	// direction is walked.
	InvSubClassOf map[string][]string

	// InstanceOf maps an individual to its single concept assignment.
	InstanceOf map[string]string
	// InvInstanceOf lists the individuals realizing each concept.
	InvInstanceOf map[string][]string

	// Names, Units and Costs are per-node annotations. Costs holds the raw
	// object literal: either a number or the id of a cost function.
	Names map[string]string
	Units map[string]string
	Costs map[string]string
}

// Build queries the source once per configured predicate and assembles the
// index. It fails with ErrInconsistentIndex on duplicate instance-of
// assignments.
func Build(ctx context.Context, src schemas.TripleSource, preds schemas.Predicates, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("relindex")

	idx := &Index{
		MapsTo:        make(map[string][]string),
		InvMapsTo:     make(map[string][]string),
		InvSubClassOf: make(map[string][]string),
		InstanceOf:    make(map[string]string),
		InvInstanceOf: make(map[string][]string),
		Names:         make(map[string]string),
		Units:         make(map[string]string),
		Costs:         make(map[string]string),
	}

	mapsTo, err := src.SubjectObjects(ctx, preds.MapsTo)
	if err != nil {
		return nil, fmt.Errorf("querying maps-to relations: %w", err)
	}
	for _, p := range mapsTo {
		idx.MapsTo[p.Subject] = append(idx.MapsTo[p.Subject], p.Object)
		idx.InvMapsTo[p.Object] = append(idx.InvMapsTo[p.Object], p.Subject)
	}

	subClassOf, err := src.SubjectObjects(ctx, preds.SubClassOf)
	if err != nil {
		return nil, fmt.Errorf("querying subclass-of relations: %w", err)
	}
	for _, p := range subClassOf {
		idx.InvSubClassOf[p.Object] = append(idx.InvSubClassOf[p.Object], p.Subject)
	}

	instanceOf, err := src.SubjectObjects(ctx, preds.InstanceOf)
	if err != nil {
		return nil, fmt.Errorf("querying instance-of relations: %w", err)
	}
	for _, p := range instanceOf {
		if prev, ok := idx.InstanceOf[p.Subject]; ok && prev != p.Object {
			return nil, fmt.Errorf(
				"%w: individual '%s' is an instance of both '%s' and '%s'",
				ErrInconsistentIndex, p.Subject, prev, p.Object)
		}
		idx.InstanceOf[p.Subject] = p.Object
		idx.InvInstanceOf[p.Object] = append(idx.InvInstanceOf[p.Object], p.Subject)
	}

	for pred, dst := range map[string]map[string]string{
		preds.Label: idx.Names,
		preds.Unit:  idx.Units,
		preds.Cost:  idx.Costs,
	} {
		pairs, err := src.SubjectObjects(ctx, pred)
		if err != nil {
			return nil, fmt.Errorf("querying annotation predicate '%s': %w", pred, err)
		}
		for _, p := range pairs {
			dst[p.Subject] = p.Object
		}
	}

	log.Debug("Relation index built",
		zap.Int("maps_to", len(mapsTo)),
		zap.Int("subclass_of", len(subClassOf)),
		zap.Int("instance_of", len(instanceOf)))

	return idx, nil
}

// Name returns the display name annotated on node, falling back to the node
// id itself.
func (idx *Index) Name(node string) string {
	if n, ok := idx.Names[node]; ok {
		return n
	}
	return node
}

// HasMapsTo reports whether node participates in any maps-to relation, in
// either direction.
func (idx *Index) HasMapsTo(node string) bool {
	return len(idx.MapsTo[node]) > 0 || len(idx.InvMapsTo[node]) > 0
}

// CostOf resolves the cost annotation on node. A numeric literal becomes a
// fixed cost; any other literal is treated as the id of a cost function in
// repo. The fallback is the default cost for the given mechanism.
func (idx *Index) CostOf(node string, kind schemas.StepKind, repo schemas.FunctionRepo) (schemas.Cost, error) {
	raw, ok := idx.Costs[node]
	if !ok {
		return schemas.Cost{Fixed: schemas.DefaultCosts[kind]}, nil
	}
	if fixed, err := strconv.ParseFloat(raw, 64); err == nil {
		return schemas.Cost{Fixed: fixed}, nil
	}
	if repo != nil {
		if fn, ok := repo.CostFunction(raw); ok {
			return schemas.Cost{Fn: fn}, nil
		}
	}
	return schemas.Cost{}, fmt.Errorf("cost annotation '%s' on node '%s' is neither a number nor a known cost function", raw, node)
}
