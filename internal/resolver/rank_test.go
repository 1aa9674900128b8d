package resolver

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/maproute/api/schemas"
)

// buildRandomGraph assembles a small acyclic scenario with a known route
// count: some direct source alternatives on the target plus one multi-input
// function whose inputs each have several source alternatives.
func buildRandomGraph(t *testing.T, rng *rand.Rand) (*graphFixture, int) {
	t.Helper()
	g := newGraph(t)

	direct := 1 + rng.Intn(3)
	for i := 0; i < direct; i++ {
		src := fmt.Sprintf("ex:D%d", i)
		g.triple(src, g.preds.MapsTo, "ex:t")
		g.source(src, float64(i), "", rng.Float64()*5)
	}

	numInputs := 1 + rng.Intn(3)
	product := 1
	inputs := make([]string, 0, numInputs)
	for j := 0; j < numInputs; j++ {
		concept := fmt.Sprintf("ex:c%d", j)
		in := fmt.Sprintf("ex:fin%d", j)
		g.triple(in, g.preds.MapsTo, concept)
		inputs = append(inputs, in)

		alternatives := 1 + rng.Intn(3)
		product *= alternatives
		for a := 0; a < alternatives; a++ {
			src := fmt.Sprintf("ex:S%d_%d", j, a)
			g.triple(src, g.preds.MapsTo, concept)
			g.source(src, float64(a), "", rng.Float64()*5)
		}
	}
	g.triple("ex:fout", g.preds.MapsTo, "ex:t")
	g.function("ex:fn", "first", inputs, []string{"ex:fout"})

	return g, direct + product
}

func TestRouteCountInvariant(t *testing.T) {
	t.Parallel()

	// For acyclic graphs the total route count is the sum over alternatives
	// of the product of the inputs' own counts.
	rng := rand.New(rand.NewSource(42))
	for it := 0; it < 25; it++ {
		g, want := buildRandomGraph(t, rng)
		root := g.mustResolve("ex:t")
		require.Equal(t, want, root.NumRoutes(), "iteration %d", it)
	}
}

func TestRouteIndicesDenseAndDistinct(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	g, want := buildRandomGraph(t, rng)
	root := g.mustResolve("ex:t")
	require.Equal(t, want, root.NumRoutes())

	seen := make(map[string]bool)
	for i := 0; i < want; i++ {
		inputs, err := root.RouteInputs(i)
		require.NoError(t, err, "route %d", i)
		key := fmt.Sprintf("%v", inputs)
		assert.False(t, seen[key], "route %d repeats input combination %s", i, key)
		seen[key] = true
	}
}

func TestLowestCostsOrdering(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(99))
	g, total := buildRandomGraph(t, rng)
	root := g.mustResolve("ex:t")

	k := total + 3 // more than exist; everything must come back
	ranked, err := root.LowestCosts(k)
	require.NoError(t, err)
	require.Len(t, ranked, total)

	seen := make(map[int]bool)
	for i, rc := range ranked {
		assert.GreaterOrEqual(t, rc.Index, 0)
		assert.Less(t, rc.Index, total)
		assert.False(t, seen[rc.Index], "index %d returned twice", rc.Index)
		seen[rc.Index] = true
		if i > 0 {
			assert.GreaterOrEqual(t, rc.Cost, ranked[i-1].Cost, "costs must be non-decreasing")
		}
	}
}

func TestLowestCostsDeterministic(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(18))
	g, _ := buildRandomGraph(t, rng)
	root := g.mustResolve("ex:t")

	first, err := root.LowestCosts(4)
	require.NoError(t, err)
	second, err := root.LowestCosts(4)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated ranking disagreed (-first +second):\n%s", diff)
	}
}

func TestLowestCostsTruncation(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	for i := 0; i < 6; i++ {
		src := fmt.Sprintf("ex:S%d", i)
		g.triple(src, g.preds.MapsTo, "ex:t")
		g.source(src, float64(i), "", float64(10-i))
	}
	root := g.mustResolve("ex:t")
	require.Equal(t, 6, root.NumRoutes())

	ranked, err := root.LowestCosts(2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	// The cheapest terminals are the last-inserted ones.
	assert.InDelta(t, 5.0+schemas.DefaultCosts[schemas.StepInvMapsTo], ranked[0].Cost, 1e-9)
	assert.Equal(t, 5, ranked[0].Index)
	assert.Equal(t, 4, ranked[1].Index)
}

func TestCallableCost(t *testing.T) {
	t.Parallel()

	// The function individual carries a cost annotation naming a cost
	// function; ranking must materialize the inputs and consult it.
	g := newGraph(t)
	g.triple("ex:S", g.preds.MapsTo, "ex:c0")
	g.source("ex:S", 4.0, "", 1.0)
	g.triple("ex:fin", g.preds.MapsTo, "ex:c0")
	g.triple("ex:fout", g.preds.MapsTo, "ex:t")
	g.function("ex:fn", "first", []string{"ex:fin"}, []string{"ex:fout"})
	g.triple("ex:fn", g.preds.Cost, "ex:costFn")

	costCalls := 0
	g.repo.RegisterCost("ex:costFn", func(magnitudes map[string]any) (float64, error) {
		costCalls++
		v, ok := magnitudes["ex:fin"].(float64)
		require.True(t, ok, "cost function should see the resolved magnitude")
		return v * 10, nil
	})

	root := g.mustResolve("ex:t")
	require.Equal(t, 1, root.NumRoutes())

	ranked, err := root.LowestCosts(1)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, 1, costCalls)

	// Source cost + callable function cost (4.0*10) + the remaining fixed
	// relation costs along the chain.
	assert.Greater(t, ranked[0].Cost, 41.0)
}
