package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformationOps_MultiplyInto(t *testing.T) {
	ops := TransformationOps{}
	// T = [1, 0, 0], I = [0, 1, 2] (identity on 3 points).
	tt := NewTransformation([]uint16{1, 0, 0})
	id := NewTransformation([]uint16{0, 1, 2})

	var dst Transformation
	ops.MultiplyInto(&dst, tt, tt)
	assert.Equal(t, []uint16{0, 1, 1}, dst.Images)

	ops.MultiplyInto(&dst, id, tt)
	assert.True(t, ops.Equal(dst, tt))

	ops.MultiplyInto(&dst, tt, id)
	assert.True(t, ops.Equal(dst, tt))
}

func TestTransformationOps_EqualAndHash(t *testing.T) {
	ops := TransformationOps{}
	a := NewTransformation([]uint16{1, 0, 0})
	b := NewTransformation([]uint16{1, 0, 0})
	c := NewTransformation([]uint16{0, 1, 0})

	require.True(t, ops.Equal(a, b))
	assert.Equal(t, ops.Hash(a), ops.Hash(b))
	assert.False(t, ops.Equal(a, c))
}

func TestTransformationOps_Identity(t *testing.T) {
	ops := TransformationOps{}
	tt := NewTransformation([]uint16{1, 0, 0})
	id := ops.Identity(tt)
	assert.Equal(t, []uint16{0, 1, 2}, id.Images)

	var dst Transformation
	ops.MultiplyInto(&dst, tt, id)
	assert.True(t, ops.Equal(dst, tt))
}
