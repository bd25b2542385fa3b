package element

import "fmt"

// Transformation represents a function {0,...,n-1} -> {0,...,n-1} as a flat
// slice of images: Images[i] is the image of i. This is the reference
// element type used to exercise and test FroidurePinEngine end to end; it
// is deliberately the only concrete element type this module carries, the
// rest of the element-type zoo (bipartitions, matrices over semirings,
// partitioned binary relations) being left to other packages.
type Transformation struct {
	Images []uint16
}

// NewTransformation copies images into a new Transformation.
func NewTransformation(images []uint16) Transformation {
	out := make([]uint16, len(images))
	copy(out, images)
	return Transformation{Images: out}
}

// IdentityTransformation returns the identity transformation of the given degree.
func IdentityTransformation(degree int) Transformation {
	images := make([]uint16, degree)
	for i := range images {
		images[i] = uint16(i)
	}
	return Transformation{Images: images}
}

func (t Transformation) String() string {
	return fmt.Sprintf("%v", t.Images)
}

// TransformationOps implements element.Ops[Transformation].
type TransformationOps struct{}

// Equal reports whether a and b map every point identically.
func (TransformationOps) Equal(a, b Transformation) bool {
	if len(a.Images) != len(b.Images) {
		return false
	}
	for i := range a.Images {
		if a.Images[i] != b.Images[i] {
			return false
		}
	}
	return true
}

// Hash computes an FNV-1a style hash over the image slice.
func (TransformationOps) Hash(a Transformation) uint64 {
	var h uint64 = 14695981039346656037
	for _, img := range a.Images {
		h ^= uint64(img)
		h *= 1099511628211
	}
	return h
}

// Degree returns the number of points a acts on.
func (TransformationOps) Degree(a Transformation) int {
	return len(a.Images)
}

// Complexity is the degree: multiplication is O(degree). The
// Froidure-Pin engine does not read this value.
func (TransformationOps) Complexity(a Transformation) int {
	return len(a.Images)
}

// Identity returns the identity transformation matching a's degree.
func (TransformationOps) Identity(a Transformation) Transformation {
	return IdentityTransformation(len(a.Images))
}

// Clone returns an independent copy of a, so storing it in the element
// table is safe even after a's backing array is later reused as scratch
// space by MultiplyInto.
func (TransformationOps) Clone(a Transformation) Transformation {
	return NewTransformation(a.Images)
}

// MultiplyInto writes a·b (apply a, then b) into dst: (a·b)(x) = b(a(x)),
// the standard convention for transformation semigroups acting on the
// right.
func (TransformationOps) MultiplyInto(dst *Transformation, a, b Transformation) {
	if cap(dst.Images) < len(a.Images) {
		dst.Images = make([]uint16, len(a.Images))
	} else {
		dst.Images = dst.Images[:len(a.Images)]
	}
	for i, ai := range a.Images {
		dst.Images[i] = b.Images[ai]
	}
}
