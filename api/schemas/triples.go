package schemas

import "context"

// -- Relation Source Models --

// Triple is one subject/predicate/object assertion in the relation graph.
type Triple struct {
	Subject   string `json:"subject" yaml:"subject"`
	Predicate string `json:"predicate" yaml:"predicate"`
	Object    string `json:"object" yaml:"object"`
}

// Pair is a (subject, object) projection of a triple for a fixed predicate.
type Pair struct {
	Subject string
	Object  string
}

// TripleSource is the query capability the resolver consumes. The index is
// built in one pass, so a source is only ever asked once per predicate.
type TripleSource interface {
	// SubjectObjects returns all (subject, object) pairs asserted under the
	// given predicate, in a stable order.
	SubjectObjects(ctx context.Context, predicate string) ([]Pair, error)
}

// Predicates configures the predicate IRIs the resolver recognizes. All of
// them are overridable so the resolver stays ontology-agnostic.
type Predicates struct {
	MapsTo     string `mapstructure:"maps_to" yaml:"maps_to"`
	SubClassOf string `mapstructure:"subclass_of" yaml:"subclass_of"`
	InstanceOf string `mapstructure:"instance_of" yaml:"instance_of"`
	Label      string `mapstructure:"label" yaml:"label"`
	Unit       string `mapstructure:"unit" yaml:"unit"`
	Cost       string `mapstructure:"cost" yaml:"cost"`

	// Function encoding predicates, consumed by the catalog builders.
	Expects string `mapstructure:"expects" yaml:"expects"`
	Returns string `mapstructure:"returns" yaml:"returns"`
	First   string `mapstructure:"first" yaml:"first"`
	Rest    string `mapstructure:"rest" yaml:"rest"`
	Nil     string `mapstructure:"nil" yaml:"nil"`
}

// DefaultPredicates returns the vocabulary the resolver assumes when the
// caller does not override it.
func DefaultPredicates() Predicates {
	return Predicates{
		MapsTo:     "https://w3id.org/emmo/domain/mappings#mapsTo",
		SubClassOf: "http://www.w3.org/2000/01/rdf-schema#subClassOf",
		InstanceOf: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type",
		Label:      "http://www.w3.org/2000/01/rdf-schema#label",
		Unit:       "https://w3id.org/emmo/domain/mappings#hasUnit",
		Cost:       "https://w3id.org/emmo/domain/mappings#hasCost",
		Expects:    "https://w3id.org/function/ontology#expects",
		Returns:    "https://w3id.org/function/ontology#returns",
		First:      "http://www.w3.org/1999/02/22-rdf-syntax-ns#first",
		Rest:       "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest",
		Nil:        "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil",
	}
}
