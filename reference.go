// Package lanes reference implementations for verification
package lanes

import (
	"gonum.org/v1/gonum/floats"
)

// Reference contains simple, correct host-side implementations of the
// kernels. These are used for testing and verification of the dispatched
// implementations.
type Reference struct{}

// AddFloat32 computes c = a + b element-wise (reference implementation)
func (r Reference) AddFloat32(a, b, c []float32) {
	for i := range a {
		c[i] = a[i] + b[i]
	}
}

// AddFloat64 computes c = a + b element-wise (reference implementation)
func (r Reference) AddFloat64(a, b, c []float64) {
	floats.AddTo(c, a, b)
}

// AddInt32 computes c = a + b element-wise with wraparound semantics
// (reference implementation)
func (r Reference) AddInt32(a, b, c []int32) {
	for i := range a {
		c[i] = a[i] + b[i]
	}
}
