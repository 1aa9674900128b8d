package funccatalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/maproute/api/schemas"
	"github.com/xkilldash9x/maproute/internal/triplestore"
)

func testStore(t *testing.T, triples []schemas.Triple) *triplestore.InMemoryStore {
	t.Helper()
	store := triplestore.NewInMemoryStore(zap.NewNop())
	require.NoError(t, store.AddAll(context.Background(), triples))
	return store
}

// list asserts a first/rest chain for the given elements and returns the
// triples, with blank nodes named after the head.
func list(preds schemas.Predicates, head string, elems ...string) []schemas.Triple {
	var out []schemas.Triple
	node := head
	for i, elem := range elems {
		out = append(out, schemas.Triple{Subject: node, Predicate: preds.First, Object: elem})
		next := preds.Nil
		if i < len(elems)-1 {
			next = head + "_" + string(rune('b'+i))
		}
		out = append(out, schemas.Triple{Subject: node, Predicate: preds.Rest, Object: next})
		node = next
	}
	return out
}

func TestListBuilder(t *testing.T) {
	t.Parallel()
	preds := schemas.DefaultPredicates()

	t.Run("should recover declared input order from the list links", func(t *testing.T) {
		t.Parallel()
		triples := []schemas.Triple{
			{Subject: "ex:fn", Predicate: preds.Expects, Object: "_:in"},
			{Subject: "ex:fn", Predicate: preds.Returns, Object: "_:out"},
		}
		triples = append(triples, list(preds, "_:in", "ex:x", "ex:y", "ex:z")...)
		triples = append(triples, list(preds, "_:out", "ex:r")...)

		catalog, err := NewListBuilder(preds, zap.NewNop()).Build(context.Background(), testStore(t, triples))
		require.NoError(t, err)

		require.Len(t, catalog["ex:r"], 1)
		assert.Equal(t, "ex:fn", catalog["ex:r"][0].FunctionID)
		assert.Equal(t, []string{"ex:x", "ex:y", "ex:z"}, catalog["ex:r"][0].Inputs)
	})

	t.Run("should register a multi-output function under every output", func(t *testing.T) {
		t.Parallel()
		triples := []schemas.Triple{
			{Subject: "ex:fn", Predicate: preds.Expects, Object: "_:in"},
			{Subject: "ex:fn", Predicate: preds.Returns, Object: "_:out"},
		}
		triples = append(triples, list(preds, "_:in", "ex:x")...)
		triples = append(triples, list(preds, "_:out", "ex:r1", "ex:r2")...)

		catalog, err := NewListBuilder(preds, zap.NewNop()).Build(context.Background(), testStore(t, triples))
		require.NoError(t, err)

		assert.Len(t, catalog["ex:r1"], 1)
		assert.Len(t, catalog["ex:r2"], 1)
	})

	t.Run("should truncate a broken list at the missing first link", func(t *testing.T) {
		t.Parallel()
		triples := []schemas.Triple{
			{Subject: "ex:fn", Predicate: preds.Expects, Object: "_:in"},
			{Subject: "ex:fn", Predicate: preds.Returns, Object: "_:out"},
			// _:in_b has a rest link but no first link.
			{Subject: "_:in", Predicate: preds.First, Object: "ex:x"},
			{Subject: "_:in", Predicate: preds.Rest, Object: "_:in_b"},
			{Subject: "_:in_b", Predicate: preds.Rest, Object: preds.Nil},
		}
		triples = append(triples, list(preds, "_:out", "ex:r")...)

		catalog, err := NewListBuilder(preds, zap.NewNop()).Build(context.Background(), testStore(t, triples))
		require.NoError(t, err)
		assert.Equal(t, []string{"ex:x"}, catalog["ex:r"][0].Inputs)
	})

	t.Run("should truncate a cyclic list", func(t *testing.T) {
		t.Parallel()
		triples := []schemas.Triple{
			{Subject: "ex:fn", Predicate: preds.Expects, Object: "_:in"},
			{Subject: "ex:fn", Predicate: preds.Returns, Object: "_:out"},
			{Subject: "_:in", Predicate: preds.First, Object: "ex:x"},
			{Subject: "_:in", Predicate: preds.Rest, Object: "_:in2"},
			{Subject: "_:in2", Predicate: preds.First, Object: "ex:y"},
			{Subject: "_:in2", Predicate: preds.Rest, Object: "_:in"},
		}
		triples = append(triples, list(preds, "_:out", "ex:r")...)

		catalog, err := NewListBuilder(preds, zap.NewNop()).Build(context.Background(), testStore(t, triples))
		require.NoError(t, err)
		assert.Equal(t, []string{"ex:x", "ex:y"}, catalog["ex:r"][0].Inputs)
	})
}

func TestDirectBuilder(t *testing.T) {
	t.Parallel()
	preds := schemas.DefaultPredicates()

	t.Run("should read direct expects and returns links", func(t *testing.T) {
		t.Parallel()
		store := testStore(t, []schemas.Triple{
			{Subject: "ex:fn", Predicate: preds.Expects, Object: "ex:x"},
			{Subject: "ex:fn", Predicate: preds.Expects, Object: "ex:y"},
			{Subject: "ex:fn", Predicate: preds.Returns, Object: "ex:r"},
		})

		catalog, err := NewDirectBuilder(preds).Build(context.Background(), store)
		require.NoError(t, err)

		require.Len(t, catalog["ex:r"], 1)
		assert.Equal(t, []string{"ex:x", "ex:y"}, catalog["ex:r"][0].Inputs)
	})

	t.Run("should skip list heads owned by the list builder", func(t *testing.T) {
		t.Parallel()
		triples := []schemas.Triple{
			{Subject: "ex:fn", Predicate: preds.Expects, Object: "_:in"},
			{Subject: "ex:fn", Predicate: preds.Returns, Object: "_:out"},
		}
		triples = append(triples, list(preds, "_:in", "ex:x")...)
		triples = append(triples, list(preds, "_:out", "ex:r")...)

		catalog, err := NewDirectBuilder(preds).Build(context.Background(), testStore(t, triples))
		require.NoError(t, err)
		assert.Empty(t, catalog)
	})
}

func TestMergeKeepsDuplicates(t *testing.T) {
	t.Parallel()

	a := Catalog{"ex:r": {{FunctionID: "ex:f1", Inputs: []string{"ex:x"}}}}
	b := Catalog{"ex:r": {{FunctionID: "ex:f1", Inputs: []string{"ex:x"}}, {FunctionID: "ex:f2"}}}

	merged := Merge(a, b)
	require.Len(t, merged["ex:r"], 3)
	assert.Equal(t, "ex:f1", merged["ex:r"][0].FunctionID)
	assert.Equal(t, "ex:f2", merged["ex:r"][2].FunctionID)
}

func TestBuildAllMergesBuilders(t *testing.T) {
	t.Parallel()
	preds := schemas.DefaultPredicates()

	triples := []schemas.Triple{
		{Subject: "ex:listed", Predicate: preds.Expects, Object: "_:in"},
		{Subject: "ex:listed", Predicate: preds.Returns, Object: "_:out"},
		{Subject: "ex:direct", Predicate: preds.Expects, Object: "ex:y"},
		{Subject: "ex:direct", Predicate: preds.Returns, Object: "ex:r"},
	}
	triples = append(triples, list(preds, "_:in", "ex:x")...)
	triples = append(triples, list(preds, "_:out", "ex:r")...)

	builders := []Builder{NewListBuilder(preds, zap.NewNop()), NewDirectBuilder(preds)}
	catalog, err := BuildAll(context.Background(), testStore(t, triples), builders)
	require.NoError(t, err)

	require.Len(t, catalog["ex:r"], 2)
	ids := []string{catalog["ex:r"][0].FunctionID, catalog["ex:r"][1].FunctionID}
	assert.ElementsMatch(t, []string{"ex:listed", "ex:direct"}, ids)
}
