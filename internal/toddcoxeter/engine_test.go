package toddcoxeter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpsemi/semigroups/pkg/word"
)

func rel(lhs, rhs []word.Generator) word.Relation {
	return word.NewRelation(lhs, rhs)
}

// TestTrivialPresentation covers nrgens=2, relations = [aa=a, bb=b,
// aba=a], extra=[], two-sided: gives nr_classes=4 and
// word_to_class_index([a,b,a]) == word_to_class_index([a]).
func TestTrivialPresentation(t *testing.T) {
	a, b := word.Generator(0), word.Generator(1)
	relations := []word.Relation{
		rel([]word.Generator{a, a}, []word.Generator{a}),
		rel([]word.Generator{b, b}, []word.Generator{b}),
		rel([]word.Generator{a, b, a}, []word.Generator{a}),
	}

	e, err := New(2, relations, nil, word.TwoSided)
	require.NoError(t, err)

	n, err := e.NrClasses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.True(t, e.IsDone())

	aba, err := e.WordToClassIndex(context.Background(), word.Word{a, b, a})
	require.NoError(t, err)
	aOnly, err := e.WordToClassIndex(context.Background(), word.Word{a})
	require.NoError(t, err)
	assert.Equal(t, aOnly, aba)
}

// TestPrefilledNoOpWhenExtraEmpty checks that any valid Cayley-graph
// prefill with empty extra leaves nr_classes equal to the number of
// prefill rows.
func TestPrefilledNoOpWhenExtraEmpty(t *testing.T) {
	// A 3-row Cayley graph over 2 generators: a 3-element cyclic monoid,
	// generator 0 cycling 0->1->2->0, generator 1 fixing everything (the
	// identity generator).
	rows := [][]uint32{
		{1, 0},
		{2, 1},
		{0, 2},
	}

	e, err := New(2, nil, nil, word.Right)
	require.NoError(t, err)
	require.NoError(t, e.Prefill(rows))

	n, err := e.NrClasses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPrefilledTracesExtra(t *testing.T) {
	rows := [][]uint32{
		{1, 0},
		{2, 1},
		{0, 2},
	}
	g0 := word.Generator(0)

	e, err := New(2, nil, nil, word.Right)
	require.NoError(t, err)
	require.NoError(t, e.Prefill(rows))
	e.extra = []word.Relation{rel([]word.Generator{g0, g0}, []word.Generator{g0})}

	n, err := e.NrClasses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_RejectsOutOfRangeGenerator(t *testing.T) {
	relations := []word.Relation{rel([]word.Generator{0, 5}, []word.Generator{0})}
	_, err := New(2, relations, nil, word.Right)
	require.Error(t, err)
}

func TestLeftSideReversesRelations(t *testing.T) {
	a, b := word.Generator(0), word.Generator(1)
	relations := []word.Relation{
		rel([]word.Generator{a, b}, []word.Generator{b, a}),
	}
	e, err := New(2, relations, nil, word.Left)
	require.NoError(t, err)
	assert.Equal(t, word.Word{b, a}, e.relations[0].LHS)
	assert.Equal(t, word.Word{a, b}, e.relations[0].RHS)
}

// TestCancellationLeavesStateConsistent checks the behaviour this port
// can exercise deterministically: an already-cancelled context stops Run
// before any coset is defined, and IsDone reports false.
func TestCancellationLeavesStateConsistent(t *testing.T) {
	a, b := word.Generator(0), word.Generator(1)
	// A presentation with no finite quotient under these two relations
	// alone (free monoid on two generators modulo nothing resembling a
	// collapsing law) would never terminate; using a relation set that
	// still grows unboundedly here is unnecessary — an immediately
	// cancelled context exercises the same early-return path regardless
	// of whether the presentation is finite.
	relations := []word.Relation{
		rel([]word.Generator{a, a}, []word.Generator{a}),
		rel([]word.Generator{b, b}, []word.Generator{b}),
	}
	e, err := New(2, relations, nil, word.TwoSided)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = e.Run(ctx, unboundedBudget)
	require.NoError(t, err)
	assert.False(t, e.IsDone())

	for c := range e.t.cosetTable {
		if !e.t.isActive(uint32(c)) {
			continue
		}
		for g := 0; g < e.nrgens; g++ {
			d := e.t.cosetTable[c][g]
			if d == word.Undefined {
				continue
			}
			found := false
			for p := e.t.preimInit[d][g]; p != word.Undefined; p = e.t.preimNext[p][g] {
				if p == uint32(c) {
					found = true
					break
				}
			}
			assert.True(t, found, "coset %d should appear in preimage chain of (%d,%d)", c, d, g)
		}
	}
}
