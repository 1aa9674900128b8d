package schemas

// -- Core Mapping Models --
// These types are shared between the relation index, the function catalog and
// the resolver. They describe values, costs and quantities; the route tree
// itself lives in internal/resolver because it needs the function repository
// to evaluate.

// Value is a terminal datum supplied by the caller. It is immutable once
// handed to Resolve: route steps reference it, they never change it.
type Value struct {
	// Magnitude holds the concrete datum (commonly float64 or []float64).
	Magnitude any
	// Provider, when set, is invoked lazily instead of reading Magnitude.
	// This lets callers bind expensive fetches that only run if a route
	// actually selects this value.
	Provider func() (any, error)
	// Unit is the unit the magnitude is expressed in. Empty means unitless.
	Unit string
	// ConceptIRI identifies the ontological concept this value realizes.
	ConceptIRI string
	// PropertyIRI is the datamodel property the value originated from.
	PropertyIRI string
	// Cost is the fixed cost of consuming this value in a route.
	Cost float64
}

// Resolve returns the concrete magnitude, invoking the provider if one is
// bound.
func (v *Value) Resolve() (any, error) {
	if v.Provider != nil {
		return v.Provider()
	}
	return v.Magnitude, nil
}

// StepKind tags the relation or mechanism that produced a route step.
type StepKind string

const (
	StepMapsTo        StepKind = "mapsTo"
	StepInvMapsTo     StepKind = "inverseMapsTo"
	StepInstanceOf    StepKind = "instanceOf"
	StepInvInstanceOf StepKind = "inverseInstanceOf"
	StepInvSubClassOf StepKind = "inverseSubClassOf"
	StepFunction      StepKind = "function"
)

// CostFunc computes a route cost from the resolved input magnitudes of one
// specific candidate route, keyed by input name.
type CostFunc func(magnitudes map[string]any) (float64, error)

// Cost is either a fixed number or a callable evaluated per candidate route.
// When Fn is non-nil it wins over Fixed.
type Cost struct {
	Fixed float64
	Fn    CostFunc
}

// DefaultCosts are the per-mechanism costs applied when the relation graph
// carries no explicit cost annotation for a node.
var DefaultCosts = map[StepKind]float64{
	StepMapsTo:        2.0,
	StepInvMapsTo:     2.0,
	StepInstanceOf:    1.0,
	StepInvInstanceOf: 1.0,
	StepInvSubClassOf: 1.0,
	StepFunction:      10.0,
}

// -- Quantities --

// Quantity is the unit-aware wrapper the evaluator produces. The default
// implementation lives in internal/units; callers may inject their own
// factory to plug a different quantity arithmetic in.
type Quantity interface {
	// Magnitude returns the bare value (float64, []float64, ...).
	Magnitude() any
	// Unit returns the unit symbol, empty for unitless quantities.
	Unit() string
	// To converts the quantity to the given unit.
	To(unit string) (Quantity, error)
}

// QuantityFactory wraps a magnitude and unit into a Quantity.
type QuantityFactory func(magnitude any, unit string) Quantity

// -- Functions --

// Function is a transformation callable. Arguments arrive in the order the
// catalog declared the function's inputs.
type Function func(args []Quantity) (Quantity, error)

// FunctionRepo maps a function id (IRI) to its callable implementation. The
// same repository also backs callable cost annotations.
type FunctionRepo interface {
	// Function returns the callable registered under id, or false.
	Function(id string) (Function, bool)
	// CostFunction returns the cost callable registered under id, or false.
	CostFunction(id string) (CostFunc, bool)
}
