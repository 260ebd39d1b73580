package lanes

// DType identifies the element type of a Buffer. All buffers participating
// in one kernel launch must share the same DType.
type DType int

const (
	Float32 DType = iota // IEEE 754 single precision
	Float64              // IEEE 754 double precision
	Int32                // two's-complement, addition wraps around
)

// Size returns the width of one element in bytes.
func (dt DType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// String returns the name of the element type.
func (dt DType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	default:
		return "unknown"
	}
}
