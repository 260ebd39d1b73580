package lanes

import "fmt"

// Kernel represents a per-block compute body executed across a launch grid.
// Execute is called once per block instance and must be safe for concurrent
// invocation: distinct blocks own disjoint offset ranges and never write
// overlapping memory. nElements is the true element count of the launch;
// lanes at or beyond it must be masked before any buffer access.
type Kernel interface {
	Execute(blk Block, nElements int, bufs ...*Buffer) error
}

// KernelFunc is a function that can be launched as a kernel.
type KernelFunc func(blk Block, nElements int, bufs ...*Buffer) error

// Execute implements Kernel.
func (fn KernelFunc) Execute(blk Block, nElements int, bufs ...*Buffer) error {
	return fn(blk, nElements, bufs...)
}

// addKernel is the element-wise addition body: masked loads of x and y,
// addition in the buffers' element type, masked store to the output.
// Float types follow IEEE 754 arithmetic; Int32 wraps around on overflow
// (Go's native two's-complement addition).
type addKernel struct{}

func (addKernel) Execute(blk Block, nElements int, bufs ...*Buffer) error {
	x, y, out := bufs[0], bufs[1], bufs[2]

	offsets := blk.Offsets()
	mask := MaskFor(offsets, nElements)

	switch x.Type() {
	case Float32:
		addBlock(x.Float32(), y.Float32(), out.Float32(), offsets, mask)
	case Float64:
		addBlock(x.Float64(), y.Float64(), out.Float64(), offsets, mask)
	case Int32:
		addBlock(x.Int32(), y.Int32(), out.Int32(), offsets, mask)
	default:
		return NewInvalidConfigurationError("AddKernel", fmt.Sprintf("unsupported element type %s", x.Type()))
	}
	return nil
}

func addBlock[T Element](x, y, out []T, offsets []int, mask Mask) {
	xv := MaskedLoad(x, offsets, mask)
	yv := MaskedLoad(y, offsets, mask)
	for i := range xv {
		xv[i] += yv[i]
	}
	MaskedStore(out, offsets, xv, mask)
}

// AddKernel returns the element-wise addition kernel, for callers that want
// to drive Launch directly instead of going through Add.
func AddKernel() Kernel {
	return addKernel{}
}
