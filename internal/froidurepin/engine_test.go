package froidurepin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpsemi/semigroups/internal/element"
	"github.com/fpsemi/semigroups/pkg/word"
)

func tf(images ...uint16) element.Transformation {
	return element.NewTransformation(images)
}

// TestEngine_TransformationSemigroupSize4 enumerates the transformation
// monoid generated by T = [1,0,0] and I = [0,1,2], expecting size 4 and
// 2 idempotents.
func TestEngine_TransformationSemigroupSize4(t *testing.T) {
	ops := element.TransformationOps{}
	T := tf(1, 0, 0)
	I := tf(0, 1, 2)

	e, err := New[element.Transformation](ops, []element.Transformation{T, I}, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 4, e.Size())
	assert.Equal(t, 2, e.NrIdempotents(1))
	assert.Equal(t, 2, e.NrIdempotents(4))
}

// TestEngine_FreeMonogenicMonoid enumerates the monogenic monoid generated
// by T = [1, 0]: elements T, I, T^2, T^3 = T, size 3, nrrules = 1.
func TestEngine_FreeMonogenicMonoid(t *testing.T) {
	ops := element.TransformationOps{}
	T := tf(1, 0)

	e, err := New[element.Transformation](ops, []element.Transformation{T}, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 3, e.Size())
	assert.Equal(t, 1, e.NrRules())

	rel, ok := e.NextRelation()
	require.True(t, ok)
	assert.Equal(t, word.Word{0, 0, 0}, rel.LHS)
	assert.Equal(t, word.Word{0}, rel.RHS)

	_, ok = e.NextRelation()
	assert.False(t, ok)
}

// TestEngine_CayleyConsistency checks that for every i and g,
// right[i][g] really is elements[i]·generators[g].
func TestEngine_CayleyConsistency(t *testing.T) {
	ops := element.TransformationOps{}
	T := tf(1, 0, 0)
	I := tf(0, 1, 2)

	e, err := New[element.Transformation](ops, []element.Transformation{T, I}, DefaultConfig())
	require.NoError(t, err)
	e.Size()

	right := e.RightCayley()
	elems := e.Elements()
	gens := []element.Transformation{T, I}
	var dst element.Transformation
	for i, elem := range elems {
		for g, gen := range gens {
			ops.MultiplyInto(&dst, elem, gen)
			want := e.Position(dst)
			assert.Equal(t, want, right[i][g])
		}
	}
}

// TestEngine_LeftRightCoherence checks that the left and right Cayley
// graphs agree on how generators act relative to each element.
func TestEngine_LeftRightCoherence(t *testing.T) {
	ops := element.TransformationOps{}
	T := tf(1, 0, 0)
	I := tf(0, 1, 2)

	e, err := New[element.Transformation](ops, []element.Transformation{T, I}, DefaultConfig())
	require.NoError(t, err)
	e.Size()

	left := e.LeftCayley()
	elems := e.Elements()
	gens := []element.Transformation{T, I}
	var dst element.Transformation
	for i, elem := range elems {
		for g, gen := range gens {
			ops.MultiplyInto(&dst, gen, elem)
			want := e.Position(dst)
			assert.Equal(t, want, left[i][g])
		}
	}
}

// TestEngine_WordTreeConsistency checks that every element's prefix/final
// pair reconstructs it via the right Cayley graph, and that its stored
// length matches its factorisation's length.
func TestEngine_WordTreeConsistency(t *testing.T) {
	ops := element.TransformationOps{}
	T := tf(1, 0, 0)
	I := tf(0, 1, 2)

	e, err := New[element.Transformation](ops, []element.Transformation{T, I}, DefaultConfig())
	require.NoError(t, err)
	n := e.Size()

	right := e.RightCayley()
	for i := uint32(0); i < uint32(n); i++ {
		if e.prefix[i] == word.Undefined {
			continue
		}
		assert.Equal(t, i, right[e.prefix[i]][e.final[i]])
		assert.Equal(t, e.length[i], len(e.Factorisation(i)))
	}
}

// TestEngine_FactorisationRoundTrip checks the round-trip law: for every
// i, evaluating factorisation(i) by left-fold over generators and looking
// the result up returns i.
func TestEngine_FactorisationRoundTrip(t *testing.T) {
	ops := element.TransformationOps{}
	T := tf(1, 0, 0)
	I := tf(0, 1, 2)
	gens := []element.Transformation{T, I}

	e, err := New[element.Transformation](ops, gens, DefaultConfig())
	require.NoError(t, err)
	n := e.Size()

	var dst element.Transformation
	for i := uint32(0); i < uint32(n); i++ {
		w := e.Factorisation(i)
		acc := gens[w[0]]
		for _, g := range w[1:] {
			ops.MultiplyInto(&dst, acc, gens[g])
			acc = dst
		}
		assert.Equal(t, i, e.Position(acc))
	}
}

func TestEngine_PositionUndefinedForWrongDegree(t *testing.T) {
	ops := element.TransformationOps{}
	T := tf(1, 0, 0)
	I := tf(0, 1, 2)

	e, err := New[element.Transformation](ops, []element.Transformation{T, I}, DefaultConfig())
	require.NoError(t, err)

	other := tf(1, 0, 0, 1)
	assert.Equal(t, word.Undefined, e.Position(other))
}

func TestNew_RejectsMismatchedDegree(t *testing.T) {
	ops := element.TransformationOps{}
	a := tf(0, 1)
	b := tf(0, 1, 2)

	_, err := New[element.Transformation](ops, []element.Transformation{a, b}, DefaultConfig())
	require.Error(t, err)
}

func TestEngine_DuplicateGenerators(t *testing.T) {
	ops := element.TransformationOps{}
	T := tf(1, 0, 0)

	e, err := New[element.Transformation](ops, []element.Transformation{T, T}, DefaultConfig())
	require.NoError(t, err)

	dups := e.DuplicateGenerators()
	require.Len(t, dups, 1)
	assert.Equal(t, word.Generator(0), dups[0].First)
	assert.Equal(t, word.Generator(1), dups[0].Second)
	assert.Equal(t, 2, e.Size())
}
