package funclib

import (
	"fmt"
	"sort"

	"github.com/xkilldash9x/maproute/api/schemas"
	"github.com/xkilldash9x/maproute/internal/units"
)

// Builtins are the transformation callables the CLI can bind function
// individuals to. Keys are the names accepted in mapping documents.
var Builtins = map[string]schemas.Function{
	"add":         Add,
	"sub":         Sub,
	"mul":         Mul,
	"first":       First,
	"last":        Last,
	"mean":        Mean,
	"interpolate": Interpolate,
}

func scalar(q schemas.Quantity) (float64, error) {
	switch v := q.Magnitude().(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("expected a scalar magnitude, got %T", q.Magnitude())
	}
}

func vector(q schemas.Quantity) ([]float64, error) {
	switch v := q.Magnitude().(type) {
	case []float64:
		return v, nil
	case float64:
		return []float64{v}, nil
	default:
		return nil, fmt.Errorf("expected a vector magnitude, got %T", q.Magnitude())
	}
}

func binaryScalar(name string, args []schemas.Quantity, op func(a, b float64) float64) (schemas.Quantity, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s expects 2 arguments, got %d", name, len(args))
	}
	a, err := scalar(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	// The second operand is converted into the first operand's unit before
	// combining, so mixed-unit routes stay consistent.
	rhs := args[1]
	if args[0].Unit() != "" && rhs.Unit() != "" {
		rhs, err = rhs.To(args[0].Unit())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	b, err := scalar(rhs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return units.New(op(a, b), args[0].Unit()), nil
}

// Add returns a+b.
func Add(args []schemas.Quantity) (schemas.Quantity, error) {
	return binaryScalar("add", args, func(a, b float64) float64 { return a + b })
}

// Sub returns a-b.
func Sub(args []schemas.Quantity) (schemas.Quantity, error) {
	return binaryScalar("sub", args, func(a, b float64) float64 { return a - b })
}

// Mul returns a*b.
func Mul(args []schemas.Quantity) (schemas.Quantity, error) {
	return binaryScalar("mul", args, func(a, b float64) float64 { return a * b })
}

// First returns the first element of a vector.
func First(args []schemas.Quantity) (schemas.Quantity, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("first expects 1 argument, got %d", len(args))
	}
	v, err := vector(args[0])
	if err != nil {
		return nil, fmt.Errorf("first: %w", err)
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("first: empty vector")
	}
	return units.New(v[0], args[0].Unit()), nil
}

// Last returns the last element of a vector.
func Last(args []schemas.Quantity) (schemas.Quantity, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("last expects 1 argument, got %d", len(args))
	}
	v, err := vector(args[0])
	if err != nil {
		return nil, fmt.Errorf("last: %w", err)
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("last: empty vector")
	}
	return units.New(v[len(v)-1], args[0].Unit()), nil
}

// Mean returns the arithmetic mean of a vector.
func Mean(args []schemas.Quantity) (schemas.Quantity, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("mean expects 1 argument, got %d", len(args))
	}
	v, err := vector(args[0])
	if err != nil {
		return nil, fmt.Errorf("mean: %w", err)
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("mean: empty vector")
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return units.New(sum/float64(len(v)), args[0].Unit()), nil
}

// Interpolate linearly interpolates y(x) at the query points xq. Arguments
// are (x, y, xq); the result carries y's unit. Query points outside the x
// range clamp to the boundary values.
func Interpolate(args []schemas.Quantity) (schemas.Quantity, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("interpolate expects 3 arguments (x, y, xq), got %d", len(args))
	}
	x, err := vector(args[0])
	if err != nil {
		return nil, fmt.Errorf("interpolate x: %w", err)
	}
	y, err := vector(args[1])
	if err != nil {
		return nil, fmt.Errorf("interpolate y: %w", err)
	}
	xqArg := args[2]
	if args[0].Unit() != "" && xqArg.Unit() != "" {
		xqArg, err = xqArg.To(args[0].Unit())
		if err != nil {
			return nil, fmt.Errorf("interpolate xq: %w", err)
		}
	}
	xq, err := vector(xqArg)
	if err != nil {
		return nil, fmt.Errorf("interpolate xq: %w", err)
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("interpolate: x and y lengths differ (%d vs %d)", len(x), len(y))
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("interpolate: need at least 2 support points, got %d", len(x))
	}
	if !sort.Float64sAreSorted(x) {
		return nil, fmt.Errorf("interpolate: x support points must be ascending")
	}

	out := make([]float64, len(xq))
	for i, q := range xq {
		out[i] = lerp(x, y, q)
	}
	return units.New(out, args[1].Unit()), nil
}

func lerp(x, y []float64, q float64) float64 {
	if q <= x[0] {
		return y[0]
	}
	if q >= x[len(x)-1] {
		return y[len(y)-1]
	}
	j := sort.SearchFloat64s(x, q)
	if x[j] == q {
		return y[j]
	}
	t := (q - x[j-1]) / (x[j] - x[j-1])
	return y[j-1] + t*(y[j]-y[j-1])
}
