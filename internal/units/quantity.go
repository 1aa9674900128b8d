// Package units provides the default unit-aware quantity backing the route
// evaluator. Conversions are linear (scale and offset) within a dimension,
// which covers the metric prefixes and the offset temperature scales the
// resolver needs out of the box. Callers with richer unit arithmetic inject
// their own schemas.QuantityFactory instead.
package units

import (
	"fmt"

	"github.com/xkilldash9x/maproute/api/schemas"
)

type conversion struct {
	dimension string
	factor    float64
	offset    float64
}

// registry maps unit symbols to their conversion into the dimension's base
// unit: base = value*factor + offset.
var registry = map[string]conversion{
	"m":    {"length", 1, 0},
	"dm":   {"length", 0.1, 0},
	"cm":   {"length", 0.01, 0},
	"mm":   {"length", 0.001, 0},
	"um":   {"length", 1e-6, 0},
	"km":   {"length", 1000, 0},
	"kg":   {"mass", 1, 0},
	"g":    {"mass", 0.001, 0},
	"mg":   {"mass", 1e-6, 0},
	"s":    {"time", 1, 0},
	"ms":   {"time", 0.001, 0},
	"min":  {"time", 60, 0},
	"h":    {"time", 3600, 0},
	"V":    {"voltage", 1, 0},
	"mV":   {"voltage", 0.001, 0},
	"kV":   {"voltage", 1000, 0},
	"A":    {"current", 1, 0},
	"mA":   {"current", 0.001, 0},
	"K":    {"temperature", 1, 0},
	"degC": {"temperature", 1, 273.15},
	"Pa":   {"pressure", 1, 0},
	"kPa":  {"pressure", 1000, 0},
	"MPa":  {"pressure", 1e6, 0},
}

// Register adds or overrides a unit in the registry. base = value*factor + offset.
func Register(symbol, dimension string, factor, offset float64) {
	registry[symbol] = conversion{dimension: dimension, factor: factor, offset: offset}
}

// Quantity is the default schemas.Quantity implementation.
type Quantity struct {
	mag  any
	unit string
}

var _ schemas.Quantity = Quantity{}

// New wraps a magnitude and unit. It matches schemas.QuantityFactory.
func New(magnitude any, unit string) schemas.Quantity {
	return Quantity{mag: magnitude, unit: unit}
}

func (q Quantity) Magnitude() any { return q.mag }

func (q Quantity) Unit() string { return q.unit }

// To converts the quantity to the target unit. Conversion of the zero or
// equal unit is the identity. Scalar and []float64 magnitudes convert
// elementwise; other magnitude types only pass an identity conversion.
func (q Quantity) To(unit string) (schemas.Quantity, error) {
	if unit == "" || unit == q.unit {
		return q, nil
	}
	if q.unit == "" {
		// A unitless magnitude adopts the requested unit unchanged.
		return Quantity{mag: q.mag, unit: unit}, nil
	}

	from, ok := registry[q.unit]
	if !ok {
		return nil, fmt.Errorf("unknown unit '%s'", q.unit)
	}
	to, ok := registry[unit]
	if !ok {
		return nil, fmt.Errorf("unknown unit '%s'", unit)
	}
	if from.dimension != to.dimension {
		return nil, fmt.Errorf("cannot convert '%s' (%s) to '%s' (%s)", q.unit, from.dimension, unit, to.dimension)
	}

	convert := func(v float64) float64 {
		return (v*from.factor + from.offset - to.offset) / to.factor
	}

	switch mag := q.mag.(type) {
	case float64:
		return Quantity{mag: convert(mag), unit: unit}, nil
	case int:
		return Quantity{mag: convert(float64(mag)), unit: unit}, nil
	case []float64:
		out := make([]float64, len(mag))
		for i, v := range mag {
			out[i] = convert(v)
		}
		return Quantity{mag: out, unit: unit}, nil
	default:
		return nil, fmt.Errorf("cannot convert magnitude of type %T between units", q.mag)
	}
}

func (q Quantity) String() string {
	if q.unit == "" {
		return fmt.Sprintf("%v", q.mag)
	}
	return fmt.Sprintf("%v %s", q.mag, q.unit)
}
