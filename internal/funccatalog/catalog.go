// Package funccatalog discovers the transformation functions declared in the
// relation graph and exposes them as candidates keyed by output concept.
//
// Two encodings are supported: the RDF-list encoding, where a function's
// expects/returns point at linked lists walked via first/rest, and the
// degenerate direct encoding, where they point straight at a single
// input/output individual. Builders are pluggable and their results merge;
// duplicate candidates are kept on purpose, the cost ranker discards the
// expensive ones later.
package funccatalog

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/maproute/api/schemas"
	"go.uber.org/zap"
)

// Candidate is one known way to compute an output concept.
type Candidate struct {
	// FunctionID is the function's id in the repository.
	FunctionID string
	// Inputs are the input concept ids, in declared order.
	Inputs []string
}

// Catalog maps an output concept to the candidates able to produce it.
type Catalog map[string][]Candidate

// Builder is one catalog discovery strategy.
type Builder interface {
	Build(ctx context.Context, src schemas.TripleSource) (Catalog, error)
}

// Merge combines catalogs in order, keeping every candidate.
func Merge(catalogs ...Catalog) Catalog {
	merged := make(Catalog)
	for _, c := range catalogs {
		for output, cands := range c {
			merged[output] = append(merged[output], cands...)
		}
	}
	return merged
}

// BuildAll runs every builder against the source and merges the results.
func BuildAll(ctx context.Context, src schemas.TripleSource, builders []Builder) (Catalog, error) {
	catalogs := make([]Catalog, 0, len(builders))
	for _, b := range builders {
		c, err := b.Build(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("building function catalog: %w", err)
		}
		catalogs = append(catalogs, c)
	}
	return Merge(catalogs...), nil
}

// ListBuilder handles the RDF-list encoding. Expects and Returns point at a
// list head; First/Rest links recover the element order. Broken or partially
// linked lists are truncated at the break rather than failing the build.
type ListBuilder struct {
	Expects string
	Returns string
	First   string
	Rest    string
	Nil     string

	Log *zap.Logger
}

// NewListBuilder wires a ListBuilder from the configured predicates.
func NewListBuilder(preds schemas.Predicates, logger *zap.Logger) *ListBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListBuilder{
		Expects: preds.Expects,
		Returns: preds.Returns,
		First:   preds.First,
		Rest:    preds.Rest,
		Nil:     preds.Nil,
		Log:     logger.Named("funccatalog"),
	}
}

func (b *ListBuilder) Build(ctx context.Context, src schemas.TripleSource) (Catalog, error) {
	first, err := objectsBySubject(ctx, src, b.First)
	if err != nil {
		return nil, err
	}
	rest, err := objectsBySubject(ctx, src, b.Rest)
	if err != nil {
		return nil, err
	}

	expects, err := src.SubjectObjects(ctx, b.Expects)
	if err != nil {
		return nil, fmt.Errorf("querying expects relations: %w", err)
	}
	returns, err := src.SubjectObjects(ctx, b.Returns)
	if err != nil {
		return nil, fmt.Errorf("querying returns relations: %w", err)
	}

	inputsByFn := make(map[string][]string)
	for _, p := range expects {
		inputsByFn[p.Subject] = append(inputsByFn[p.Subject], b.walkList(p.Object, first, rest)...)
	}

	catalog := make(Catalog)
	for _, p := range returns {
		outputs := b.walkList(p.Object, first, rest)
		for _, output := range outputs {
			catalog[output] = append(catalog[output], Candidate{
				FunctionID: p.Subject,
				Inputs:     inputsByFn[p.Subject],
			})
		}
	}
	return catalog, nil
}

// walkList collects the elements of a first/rest list starting at head. A
// missing first link or a dangling rest link terminates the walk with the
// elements recovered so far.
func (b *ListBuilder) walkList(head string, first, rest map[string]string) []string {
	var elems []string
	seen := make(map[string]bool)
	for node := head; node != "" && node != b.Nil; node = rest[node] {
		if seen[node] {
			b.Log.Warn("Cyclic function list truncated", zap.String("node", node))
			break
		}
		seen[node] = true
		elem, ok := first[node]
		if !ok {
			b.Log.Warn("Broken function list truncated", zap.String("node", node))
			break
		}
		elems = append(elems, elem)
	}
	return elems
}

// DirectBuilder handles the degenerate encoding where expects/returns point
// directly at a single input/output individual. List heads are recognizable
// by carrying a First link and are skipped here; the ListBuilder owns them.
type DirectBuilder struct {
	Expects string
	Returns string
	First   string
}

// NewDirectBuilder wires a DirectBuilder from the configured predicates.
func NewDirectBuilder(preds schemas.Predicates) *DirectBuilder {
	return &DirectBuilder{Expects: preds.Expects, Returns: preds.Returns, First: preds.First}
}

func (b *DirectBuilder) Build(ctx context.Context, src schemas.TripleSource) (Catalog, error) {
	first, err := objectsBySubject(ctx, src, b.First)
	if err != nil {
		return nil, err
	}

	expects, err := src.SubjectObjects(ctx, b.Expects)
	if err != nil {
		return nil, fmt.Errorf("querying expects relations: %w", err)
	}
	returns, err := src.SubjectObjects(ctx, b.Returns)
	if err != nil {
		return nil, fmt.Errorf("querying returns relations: %w", err)
	}

	inputsByFn := make(map[string][]string)
	for _, p := range expects {
		if _, isList := first[p.Object]; isList {
			continue
		}
		inputsByFn[p.Subject] = append(inputsByFn[p.Subject], p.Object)
	}

	catalog := make(Catalog)
	for _, p := range returns {
		if _, isList := first[p.Object]; isList {
			continue
		}
		catalog[p.Object] = append(catalog[p.Object], Candidate{
			FunctionID: p.Subject,
			Inputs:     inputsByFn[p.Subject],
		})
	}
	return catalog, nil
}

func objectsBySubject(ctx context.Context, src schemas.TripleSource, predicate string) (map[string]string, error) {
	pairs, err := src.SubjectObjects(ctx, predicate)
	if err != nil {
		return nil, fmt.Errorf("querying predicate '%s': %w", predicate, err)
	}
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.Subject] = p.Object
	}
	return m, nil
}
