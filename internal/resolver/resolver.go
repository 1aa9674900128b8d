// Package resolver locates and evaluates ways of computing a target concept
// from a set of supplied source values, over a relation graph of maps-to,
// subclass-of and instance-of edges plus multi-input transformation
// functions. Resolve performs a cycle-guarded backward walk and returns the
// root of a route tree; ranking and evaluation operate lazily on that tree.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/maproute/api/schemas"
	"github.com/xkilldash9x/maproute/internal/funccatalog"
	"github.com/xkilldash9x/maproute/internal/relindex"
	"github.com/xkilldash9x/maproute/internal/units"
)

// DefaultMaxDepth bounds the backward walk. Relation chains deeper than this
// indicate a pathological ontology rather than a legitimate route.
const DefaultMaxDepth = 64

// Resolver builds route trees. A single Resolver is reusable across calls;
// no state is shared between independent Resolve invocations.
type Resolver struct {
	preds    schemas.Predicates
	builders []funccatalog.Builder
	funcs    schemas.FunctionRepo
	quantity schemas.QuantityFactory
	maxDepth int
	log      *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPredicates overrides the predicate vocabulary.
func WithPredicates(p schemas.Predicates) Option {
	return func(r *Resolver) { r.preds = p }
}

// WithFunctionRepo injects the repository backing function and cost-function
// references in the graph.
func WithFunctionRepo(repo schemas.FunctionRepo) Option {
	return func(r *Resolver) { r.funcs = repo }
}

// WithQuantityFactory overrides the quantity wrapper used by evaluation.
func WithQuantityFactory(f schemas.QuantityFactory) Option {
	return func(r *Resolver) { r.quantity = f }
}

// WithCatalogBuilders replaces the default function catalog strategies.
func WithCatalogBuilders(builders ...funccatalog.Builder) Option {
	return func(r *Resolver) { r.builders = builders }
}

// WithMaxDepth bounds the recursion depth of the backward walk.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) { r.maxDepth = depth }
}

// WithLogger injects the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) { r.log = logger }
}

// New returns a Resolver with the default predicate vocabulary, the default
// catalog builders (RDF-list plus direct encoding) and the default quantity
// implementation.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		preds:    schemas.DefaultPredicates(),
		quantity: units.New,
		maxDepth: DefaultMaxDepth,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.builders == nil {
		r.builders = []funccatalog.Builder{
			funccatalog.NewListBuilder(r.preds, r.log),
			funccatalog.NewDirectBuilder(r.preds),
		}
	}
	return r
}

// Resolve builds the route tree for target from the given sources and
// relation source. The relation index and function catalogs are built once
// per call; the returned root step is read-only.
func (r *Resolver) Resolve(ctx context.Context, target string, sources map[string]*schemas.Value, src schemas.TripleSource) (*Step, error) {
	idx, err := relindex.Build(ctx, src, r.preds, r.log)
	if err != nil {
		return nil, err
	}
	catalog, err := funccatalog.BuildAll(ctx, src, r.builders)
	if err != nil {
		return nil, err
	}

	rctx := &resolveContext{
		funcs:    r.funcs,
		quantity: r.quantity,
		names:    idx.Names,
		log:      r.log.Named("resolver"),
	}
	w := &walker{
		idx:      idx,
		catalog:  catalog,
		sources:  sources,
		funcs:    r.funcs,
		rctx:     rctx,
		maxDepth: r.maxDepth,
	}

	visited := make(map[string]bool)
	root := &Step{OutputIRI: target, OutputUnit: idx.Units[target], rctx: rctx}

	// If the target is an individual bound to a concept via instance-of,
	// that hop is followed forward exactly once before the backward walk.
	// It is mandatory, not an alternative.
	if concept, ok := idx.InstanceOf[target]; ok {
		if !idx.HasMapsTo(concept) {
			return nil, fmt.Errorf("%w: '%s' (instance of '%s')", ErrMissingRelation, concept, target)
		}
		root.Kind = schemas.StepInstanceOf
		cost, err := idx.CostOf(concept, schemas.StepInstanceOf, r.funcs)
		if err != nil {
			return nil, err
		}
		child := &Step{
			OutputIRI:  concept,
			OutputUnit: idx.Units[concept],
			Kind:       schemas.StepInstanceOf,
			rctx:       rctx,
		}
		visited[target] = true
		if err := w.walk(concept, visited, child, 1, []string{target, concept}); err != nil {
			return nil, err
		}
		root.Alternatives = append(root.Alternatives, &Alternative{
			Kind:   schemas.StepInstanceOf,
			Cost:   cost,
			Inputs: []NamedInput{{Name: concept, Step: child}},
		})
	} else {
		if !idx.HasMapsTo(target) {
			return nil, fmt.Errorf("%w: '%s'", ErrMissingRelation, target)
		}
		if err := w.walk(target, visited, root, 0, []string{target}); err != nil {
			return nil, err
		}
	}

	rctx.log.Debug("Route tree built",
		zap.String("target", target),
		zap.Int("routes", root.NumRoutes()))
	return root, nil
}

// walker carries the per-call state of one backward walk.
type walker struct {
	idx      *relindex.Index
	catalog  funccatalog.Catalog
	sources  map[string]*schemas.Value
	funcs    schemas.FunctionRepo
	rctx     *resolveContext
	maxDepth int
}

// walk expands node into step. The visited set is shared across the whole
// top-level call: a node already seen is never re-expanded, which leaves the
// freshly created child step with zero alternatives and turns that branch
// into a dead one with zero routes.
func (w *walker) walk(node string, visited map[string]bool, step *Step, depth int, chain []string) error {
	if visited[node] {
		return nil
	}
	visited[node] = true

	if depth > w.maxDepth {
		return fmt.Errorf("%w (%d): %s", ErrDepthExceeded, w.maxDepth, strings.Join(chain, " <- "))
	}

	relations := []struct {
		kind      schemas.StepKind
		neighbors []string
	}{
		{schemas.StepInvInstanceOf, w.idx.InvInstanceOf[node]},
		{schemas.StepMapsTo, w.idx.MapsTo[node]},
		{schemas.StepInvMapsTo, w.idx.InvMapsTo[node]},
		{schemas.StepInvSubClassOf, w.idx.InvSubClassOf[node]},
	}
	for _, rel := range relations {
		for _, neighbor := range rel.neighbors {
			cost, err := w.idx.CostOf(neighbor, rel.kind, w.funcs)
			if err != nil {
				return err
			}
			input, err := w.input(neighbor, rel.kind, visited, depth, chain)
			if err != nil {
				return err
			}
			step.Alternatives = append(step.Alternatives, &Alternative{
				Kind:   rel.kind,
				Cost:   cost,
				Inputs: []NamedInput{input},
			})
		}
	}

	// Function candidates contribute one joined alternative each: every
	// input becomes a named member of the same input set.
	for _, cand := range w.catalog[node] {
		cost, err := w.idx.CostOf(cand.FunctionID, schemas.StepFunction, w.funcs)
		if err != nil {
			return err
		}
		inputs := make([]NamedInput, 0, len(cand.Inputs))
		for _, in := range cand.Inputs {
			input, err := w.input(in, schemas.StepFunction, visited, depth, chain)
			if err != nil {
				return err
			}
			inputs = append(inputs, input)
		}
		step.Alternatives = append(step.Alternatives, &Alternative{
			Kind:       schemas.StepFunction,
			FunctionID: cand.FunctionID,
			Cost:       cost,
			Inputs:     inputs,
		})
	}

	return nil
}

// input resolves one discovered neighbor into a named input: a terminal
// value when the caller supplied it as a source, otherwise a recursively
// walked child step.
func (w *walker) input(node string, kind schemas.StepKind, visited map[string]bool, depth int, chain []string) (NamedInput, error) {
	if v, ok := w.sources[node]; ok {
		return NamedInput{Name: node, Value: v}, nil
	}
	child := &Step{
		OutputIRI:  node,
		OutputUnit: w.idx.Units[node],
		Kind:       kind,
		rctx:       w.rctx,
	}
	if err := w.walk(node, visited, child, depth+1, append(chain, node)); err != nil {
		return NamedInput{}, err
	}
	return NamedInput{Name: node, Step: child}, nil
}
