package lanes

import (
	"unsafe"
)

// Buffer is an opaque handle to a contiguous, fixed-length sequence of
// elements resident in device memory. It carries its element count, element
// type and owning context, and those are checked at every launch boundary.
//
// A buffer written by an in-flight launch has undefined content until the
// launch's completion handle has been waited on.
type Buffer struct {
	ptr   unsafe.Pointer
	n     int
	dtype DType
	ctx   *Context
}

// Len returns the number of elements in the buffer.
func (b *Buffer) Len() int {
	return b.n
}

// Type returns the element type of the buffer.
func (b *Buffer) Type() DType {
	return b.dtype
}

// Bytes returns the size of the buffer in bytes.
func (b *Buffer) Bytes() int {
	return b.n * b.dtype.Size()
}

// Context returns the execution context the buffer was allocated from.
func (b *Buffer) Context() *Context {
	return b.ctx
}

// Float32 returns a float32 slice view of the buffer.
// The slice can be used directly for reading and writing data on the host
// side, once any in-flight launch against the buffer has completed.
// Returns nil for empty buffers or buffers of a different element type.
//
// Example:
//
//	d_data, _ := lanes.Alloc(1024, lanes.Float32)
//	data := d_data.Float32()
//	data[0] = 3.14 // Direct access
func (b *Buffer) Float32() []float32 {
	if b.ptr == nil || b.dtype != Float32 {
		return nil
	}
	return unsafe.Slice((*float32)(b.ptr), b.n)
}

// Float64 returns a float64 slice view of the buffer.
// Returns nil for empty buffers or buffers of a different element type.
func (b *Buffer) Float64() []float64 {
	if b.ptr == nil || b.dtype != Float64 {
		return nil
	}
	return unsafe.Slice((*float64)(b.ptr), b.n)
}

// Int32 returns an int32 slice view of the buffer.
// Returns nil for empty buffers or buffers of a different element type.
func (b *Buffer) Int32() []int32 {
	if b.ptr == nil || b.dtype != Int32 {
		return nil
	}
	return unsafe.Slice((*int32)(b.ptr), b.n)
}

// Byte returns a byte slice view covering the whole buffer.
// Useful for raw memory operations or interfacing with I/O.
func (b *Buffer) Byte() []byte {
	if b.ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(b.ptr), b.Bytes())
}
