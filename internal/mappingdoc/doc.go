// Package mappingdoc loads mapping documents: YAML files carrying the
// relation triples, source bindings and function bindings of one resolution
// scenario. A document is a convenience carrier for already-parsed triples,
// not an ontology format.
package mappingdoc

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/maproute/api/schemas"
	"github.com/xkilldash9x/maproute/internal/funclib"
)

// Document is the parsed form of a mapping file.
type Document struct {
	// Prefixes expand "prefix:local" notation in triples, sources, functions
	// and the target.
	Prefixes map[string]string `yaml:"prefixes"`
	Triples  []TripleEntry     `yaml:"triples"`
	Sources  []SourceEntry     `yaml:"sources"`
	// Functions bind function individuals in the graph to builtin callables.
	Functions []FunctionEntry `yaml:"functions"`
	Target    string          `yaml:"target"`
}

// TripleEntry is one asserted triple. The predicate may be a full IRI, a
// prefixed name, or one of the aliases (mapsTo, subClassOf, instanceOf,
// label, unit, cost, expects, returns, first, rest).
type TripleEntry struct {
	Subject   string `yaml:"subject"`
	Predicate string `yaml:"predicate"`
	Object    string `yaml:"object"`
}

// SourceEntry binds a concrete value to a concept.
type SourceEntry struct {
	Concept  string    `yaml:"concept"`
	Property string    `yaml:"property"`
	Value    *float64  `yaml:"value"`
	Values   []float64 `yaml:"values"`
	Unit     string    `yaml:"unit"`
	Cost     float64   `yaml:"cost"`
}

// FunctionEntry binds a function individual to a builtin by name.
type FunctionEntry struct {
	ID      string `yaml:"id"`
	Builtin string `yaml:"builtin"`
}

// Load reads and parses a mapping document from disk.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping document: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing mapping document: %w", err)
	}
	if doc.Target == "" {
		return nil, fmt.Errorf("mapping document has no target")
	}
	return &doc, nil
}

// aliases maps short predicate names to their slot in the vocabulary.
func aliases(preds schemas.Predicates) map[string]string {
	return map[string]string{
		"mapsTo":     preds.MapsTo,
		"subClassOf": preds.SubClassOf,
		"instanceOf": preds.InstanceOf,
		"label":      preds.Label,
		"unit":       preds.Unit,
		"cost":       preds.Cost,
		"expects":    preds.Expects,
		"returns":    preds.Returns,
		"first":      preds.First,
		"rest":       preds.Rest,
		"nil":        preds.Nil,
	}
}

// Expand resolves prefixed names against the document's prefix table. Full
// IRIs and unprefixed names pass through unchanged.
func (d *Document) Expand(name string) string {
	i := strings.Index(name, ":")
	if i <= 0 {
		return name
	}
	prefix := name[:i]
	if base, ok := d.Prefixes[prefix]; ok {
		return base + name[i+1:]
	}
	return name
}

// ResolvedTriples returns the document's triples with prefixes expanded and
// predicate aliases resolved against the given vocabulary.
func (d *Document) ResolvedTriples(preds schemas.Predicates) []schemas.Triple {
	alias := aliases(preds)
	out := make([]schemas.Triple, 0, len(d.Triples))
	for _, t := range d.Triples {
		pred := t.Predicate
		if full, ok := alias[pred]; ok {
			pred = full
		} else {
			pred = d.Expand(pred)
		}
		out = append(out, schemas.Triple{
			Subject:   d.Expand(t.Subject),
			Predicate: pred,
			Object:    d.Expand(t.Object),
		})
	}
	return out
}

// ResolvedSources returns the caller-supplied terminal values keyed by
// expanded concept IRI.
func (d *Document) ResolvedSources() (map[string]*schemas.Value, error) {
	sources := make(map[string]*schemas.Value, len(d.Sources))
	for _, s := range d.Sources {
		concept := d.Expand(s.Concept)
		v := &schemas.Value{
			Unit:        s.Unit,
			ConceptIRI:  concept,
			PropertyIRI: d.Expand(s.Property),
			Cost:        s.Cost,
		}
		switch {
		case s.Value != nil && s.Values != nil:
			return nil, fmt.Errorf("source '%s' sets both value and values", s.Concept)
		case s.Value != nil:
			v.Magnitude = *s.Value
		case s.Values != nil:
			v.Magnitude = s.Values
		default:
			return nil, fmt.Errorf("source '%s' sets neither value nor values", s.Concept)
		}
		sources[concept] = v
	}
	return sources, nil
}

// ResolvedRepo builds a function repository from the document's builtin
// bindings.
func (d *Document) ResolvedRepo() (*funclib.Repo, error) {
	repo := funclib.NewRepo()
	for _, f := range d.Functions {
		if err := repo.RegisterBuiltin(d.Expand(f.ID), f.Builtin); err != nil {
			return nil, fmt.Errorf("binding function '%s': %w", f.ID, err)
		}
	}
	return repo, nil
}

// ResolvedTarget returns the expanded target IRI.
func (d *Document) ResolvedTarget() string {
	return d.Expand(d.Target)
}
