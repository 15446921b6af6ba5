package tensor

import "fmt"

// Shape holds tensor dimensions, outermost first. An empty Shape denotes a
// scalar.
type Shape []int

// NumElements returns the product of the dimensions; a scalar has one
// element.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate returns an error unless every dimension is positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("dimension %d is %d, want > 0", i, dim)
		}
	}
	return nil
}

// Equal reports whether s and other have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String formats the shape like "[32 1 28 28]".
func (s Shape) String() string {
	return fmt.Sprint([]int(s))
}
