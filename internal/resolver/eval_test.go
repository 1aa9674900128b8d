package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/maproute/api/schemas"
)

// scenarioA wires: A holds the literal 3.2, B holds a lazily provided
// vector, first(b)->c and add(a,c)->d; the target individual D realizes d.
func scenarioA(t *testing.T) *graphFixture {
	t.Helper()
	g := newGraph(t)

	g.triple("ex:A", g.preds.MapsTo, "ex:a")
	g.triple("ex:B", g.preds.MapsTo, "ex:b")
	g.source("ex:A", 3.2, "", 1.0)
	g.sources["ex:B"] = &schemas.Value{
		Provider:   func() (any, error) { return []float64{0.5, 1.2, 3.4, 6.6}, nil },
		ConceptIRI: "ex:B",
		Cost:       2.0,
	}

	g.triple("ex:first_in", g.preds.MapsTo, "ex:b")
	g.triple("ex:first_out", g.preds.MapsTo, "ex:c")
	g.function("ex:first", "first", []string{"ex:first_in"}, []string{"ex:first_out"})

	g.triple("ex:add_in1", g.preds.MapsTo, "ex:a")
	g.triple("ex:add_in2", g.preds.MapsTo, "ex:c")
	g.triple("ex:add_out", g.preds.MapsTo, "ex:d")
	g.function("ex:add", "add", []string{"ex:add_in1", "ex:add_in2"}, []string{"ex:add_out"})

	g.triple("ex:D", g.preds.InstanceOf, "ex:d")
	return g
}

func TestEvalScenarioChainedFunctions(t *testing.T) {
	t.Parallel()
	g := scenarioA(t)
	root := g.mustResolve("ex:D")

	require.Equal(t, 1, root.NumRoutes())

	t.Run("should evaluate the chained functions to 3.7", func(t *testing.T) {
		q, err := root.Eval(CheapestRoute, "")
		require.NoError(t, err)
		assert.InDelta(t, 3.7, q.Magnitude(), 1e-9)
	})

	t.Run("should report both sources as route inputs", func(t *testing.T) {
		inputs, err := root.RouteInputs(0)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"ex:A", "ex:B"}, inputs)
	})

	t.Run("should describe the route without error", func(t *testing.T) {
		dump, err := root.Describe(0)
		require.NoError(t, err)
		assert.Contains(t, dump, "ex:add")
		assert.Contains(t, dump, string(schemas.StepFunction))
	})
}

// scenarioB wires an interpolation source: X carries the length support
// points, Y the voltage samples, Q the query points; interpolate(x,y,q)->v.
func scenarioB(t *testing.T) *graphFixture {
	t.Helper()
	g := newGraph(t)

	g.triple("ex:X", g.preds.MapsTo, "ex:x")
	g.triple("ex:Y", g.preds.MapsTo, "ex:y")
	g.triple("ex:Q", g.preds.MapsTo, "ex:xq")
	g.source("ex:X", []float64{0, 2, 4, 6, 8, 10}, "m", 0)
	g.source("ex:Y", []float64{0, 4, 16, 36, 64, 100}, "V", 0)
	g.source("ex:Q", []float64{1, 7, 2, 3}, "m", 0)

	g.triple("ex:i_x", g.preds.MapsTo, "ex:x")
	g.triple("ex:i_y", g.preds.MapsTo, "ex:y")
	g.triple("ex:i_q", g.preds.MapsTo, "ex:xq")
	g.triple("ex:i_out", g.preds.MapsTo, "ex:t")
	g.function("ex:interp", "interpolate", []string{"ex:i_x", "ex:i_y", "ex:i_q"}, []string{"ex:i_out"})
	return g
}

func TestEvalScenarioInterpolation(t *testing.T) {
	t.Parallel()
	g := scenarioB(t)
	root := g.mustResolve("ex:t")

	require.Equal(t, 1, root.NumRoutes())

	t.Run("should interpolate the queried points", func(t *testing.T) {
		q, err := root.Eval(CheapestRoute, "")
		require.NoError(t, err)
		mag, ok := q.Magnitude().([]float64)
		require.True(t, ok, "expected a vector result, got %T", q.Magnitude())
		assert.InDeltaSlice(t, []float64{2, 50, 4, 10}, mag, 1e-9)
		assert.Equal(t, "V", q.Unit())
	})

	t.Run("should convert the result to a requested unit", func(t *testing.T) {
		q, err := root.Eval(0, "mV")
		require.NoError(t, err)
		mag := q.Magnitude().([]float64)
		assert.InDeltaSlice(t, []float64{2000, 50000, 4000, 10000}, mag, 1e-6)
	})

	t.Run("should convert query points given in another length unit", func(t *testing.T) {
		g := scenarioB(t)
		g.source("ex:Q", []float64{100, 700, 200, 300}, "cm", 0)
		root := g.mustResolve("ex:t")

		q, err := root.Eval(CheapestRoute, "")
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{2, 50, 4, 10}, q.Magnitude().([]float64), 1e-9)
	})
}

func TestEvalEveryRoute(t *testing.T) {
	t.Parallel()

	// Two alternatives for each of add's operands: four routes, each
	// evaluable and each consuming a distinct source combination.
	g := newGraph(t)
	for _, s := range []struct {
		ind, concept string
		val          float64
	}{
		{"ex:A1", "ex:a", 1},
		{"ex:A2", "ex:a", 2},
		{"ex:B1", "ex:b", 10},
		{"ex:B2", "ex:b", 20},
	} {
		g.triple(s.ind, g.preds.MapsTo, s.concept)
		g.source(s.ind, s.val, "", 0)
	}
	g.triple("ex:add_in1", g.preds.MapsTo, "ex:a")
	g.triple("ex:add_in2", g.preds.MapsTo, "ex:b")
	g.triple("ex:add_out", g.preds.MapsTo, "ex:t")
	g.function("ex:add", "add", []string{"ex:add_in1", "ex:add_in2"}, []string{"ex:add_out"})

	root := g.mustResolve("ex:t")
	require.Equal(t, 4, root.NumRoutes())

	sums := make(map[float64]bool)
	combos := make(map[string]bool)
	for i := 0; i < 4; i++ {
		q, err := root.Eval(i, "")
		require.NoError(t, err, "route %d", i)
		sums[q.Magnitude().(float64)] = true

		inputs, err := root.RouteInputs(i)
		require.NoError(t, err)
		key := ""
		for _, in := range inputs {
			key += in + "|"
		}
		combos[key] = true
	}
	assert.Len(t, sums, 4, "each route should produce a distinct sum")
	assert.Len(t, combos, 4, "each route should consume a distinct combination")
	for _, want := range []float64{11, 12, 21, 22} {
		assert.Contains(t, sums, want)
	}
}

func TestEvalMagnitude(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	g.triple("ex:S", g.preds.MapsTo, "ex:t")
	g.source("ex:S", 2.5, "m", 0)

	root := g.mustResolve("ex:t")
	mag, err := root.EvalMagnitude(CheapestRoute, "cm")
	require.NoError(t, err)
	assert.InDelta(t, 250.0, mag.(float64), 1e-9)
}

func TestEvalRouteIndexBounds(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	g.triple("ex:S", g.preds.MapsTo, "ex:t")
	g.source("ex:S", 1.0, "", 0)

	root := g.mustResolve("ex:t")

	t.Run("should reject an out-of-range index", func(t *testing.T) {
		_, err := root.Eval(5, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRouteIndex)
	})

	t.Run("should reject a negative explicit index", func(t *testing.T) {
		_, err := root.Eval(-7, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRouteIndex)
	})
}

func TestEvalDeclaredOutputUnit(t *testing.T) {
	t.Parallel()

	// The target concept declares an output unit; evaluation converts the
	// terminal's unit into it.
	g := newGraph(t)
	g.triple("ex:S", g.preds.MapsTo, "ex:t")
	g.triple("ex:t", g.preds.Unit, "mm")
	g.source("ex:S", 1.5, "m", 0)

	root := g.mustResolve("ex:t")
	q, err := root.Eval(0, "")
	require.NoError(t, err)
	assert.InDelta(t, 1500.0, q.Magnitude().(float64), 1e-9)
	assert.Equal(t, "mm", q.Unit())
}

func TestDescribeAllRoutes(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	g.triple("ex:S1", g.preds.MapsTo, "ex:t")
	g.triple("ex:S2", g.preds.MapsTo, "ex:t")
	g.triple("ex:S1", g.preds.Label, "first source")
	g.source("ex:S1", 1.0, "", 0)
	g.source("ex:S2", 2.0, "", 0)

	root := g.mustResolve("ex:t")
	dump, err := root.Describe(-1)
	require.NoError(t, err)
	assert.Contains(t, dump, "2 route(s)")
	assert.Contains(t, dump, "route 0:")
	assert.Contains(t, dump, "route 1:")
	assert.Contains(t, dump, "first source")
}
