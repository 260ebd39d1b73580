package lanes

import (
	"fmt"
	"sync"
	"unsafe"
)

// MemcpyKind specifies the direction of memory transfer.
// In lanes' unified memory model these are provided for API familiarity
// and are treated identically since all memory is CPU-accessible.
type MemcpyKind int

const (
	MemcpyHostToHost     MemcpyKind = iota // Host to host transfer
	MemcpyHostToDevice                     // Host to device transfer
	MemcpyDeviceToHost                     // Device to host transfer
	MemcpyDeviceToDevice                   // Device to device transfer
	MemcpyDefault                          // Default transfer (infer direction)
)

// MemoryPool manages device memory allocation with efficient reuse.
// It maintains a free list of previously allocated blocks to reduce
// allocation overhead and memory fragmentation.
type MemoryPool struct {
	mu         sync.Mutex
	allocated  map[uintptr]*allocation
	freeList   []*allocation
	totalAlloc int64
	peakAlloc  int64
}

type allocation struct {
	ptr  unsafe.Pointer
	size int
	used bool
}

// NewMemoryPool creates a new memory pool for efficient memory management.
// The pool tracks allocations and provides statistics on memory usage.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		allocated: make(map[uintptr]*allocation),
	}
}

// Alloc allocates a buffer of n elements of the given type.
// The backing memory is aligned for SIMD access. A zero-length buffer is
// valid: it owns no memory and launching over it issues zero blocks.
func (ctx *Context) Alloc(n int, dtype DType) (*Buffer, error) {
	if n < 0 {
		return nil, ErrInvalidSize
	}
	if dtype.Size() == 0 {
		return nil, NewInvalidConfigurationError("Alloc", fmt.Sprintf("unknown element type %d", int(dtype)))
	}
	buf := &Buffer{n: n, dtype: dtype, ctx: ctx}
	if n == 0 {
		return buf, nil
	}
	ptr, err := ctx.memory.allocate(n * dtype.Size())
	if err != nil {
		return nil, err
	}
	buf.ptr = ptr
	return buf, nil
}

// Free releases a buffer allocated by Alloc.
// The memory may be retained in the pool for future allocations.
// Freeing a nil or zero-length buffer is a no-op; freeing the same buffer
// twice fails with ErrDoubleFree.
func (ctx *Context) Free(b *Buffer) error {
	if b == nil || b.ptr == nil {
		return nil
	}
	return ctx.memory.release(b.ptr)
}

// Memcpy copies memory between host slices and device buffers.
// Supports *Buffer, unsafe.Pointer and the Go slice types matching the
// supported element types.
//
// Parameters:
//   - dst: Destination (*Buffer or Go slice)
//   - src: Source (*Buffer or Go slice)
//   - size: Number of bytes to copy
//   - kind: Transfer direction (for API familiarity)
//
// Example:
//
//	h_data := make([]float32, 1024)
//	d_data, _ := ctx.Alloc(1024, lanes.Float32)
//	ctx.Memcpy(d_data, h_data, 1024*4, lanes.MemcpyHostToDevice)
func (ctx *Context) Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	// On CPU, all memory transfers are just memcpy.
	// The kind parameter is kept for compatibility.

	dstPtr, err := memcpyPointer("Memcpy", "dst", dst)
	if err != nil {
		return err
	}
	srcPtr, err := memcpyPointer("Memcpy", "src", src)
	if err != nil {
		return err
	}

	if dstPtr != nil && srcPtr != nil && size > 0 {
		copy(unsafe.Slice((*byte)(dstPtr), size), unsafe.Slice((*byte)(srcPtr), size))
	}
	return nil
}

func memcpyPointer(op, role string, v interface{}) (unsafe.Pointer, error) {
	switch x := v.(type) {
	case *Buffer:
		return x.ptr, nil
	case unsafe.Pointer:
		return x, nil
	case []byte:
		if len(x) > 0 {
			return unsafe.Pointer(&x[0]), nil
		}
	case []float32:
		if len(x) > 0 {
			return unsafe.Pointer(&x[0]), nil
		}
	case []float64:
		if len(x) > 0 {
			return unsafe.Pointer(&x[0]), nil
		}
	case []int32:
		if len(x) > 0 {
			return unsafe.Pointer(&x[0]), nil
		}
	default:
		return nil, NewInvalidConfigurationError(op, fmt.Sprintf("unsupported %s type: %T", role, v))
	}
	return nil, nil
}

// MemoryPool methods

// allocate hands out an aligned region from the pool
func (mp *MemoryPool) allocate(size int) (unsafe.Pointer, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	// Round up to alignment
	alignedSize := (size + MemoryAlignment - 1) &^ (MemoryAlignment - 1)

	// Try to reuse from free list
	for i, alloc := range mp.freeList {
		if alloc.size >= alignedSize {
			mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
			alloc.used = true

			mp.totalAlloc += int64(alloc.size)
			if mp.totalAlloc > mp.peakAlloc {
				mp.peakAlloc = mp.totalAlloc
			}
			return alloc.ptr, nil
		}
	}

	// Allocate new memory
	buf := make([]byte, alignedSize)
	ptr := unsafe.Pointer(&buf[0])

	alloc := &allocation{
		ptr:  ptr,
		size: alignedSize,
		used: true,
	}
	mp.allocated[uintptr(ptr)] = alloc

	mp.totalAlloc += int64(alignedSize)
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}
	return ptr, nil
}

// release returns memory to the pool
func (mp *MemoryPool) release(ptr unsafe.Pointer) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	alloc, ok := mp.allocated[uintptr(ptr)]
	if !ok {
		return NewMemoryError("Free", "pointer not found in allocation pool", nil)
	}
	if !alloc.used {
		return ErrDoubleFree
	}

	alloc.used = false
	mp.freeList = append(mp.freeList, alloc)
	mp.totalAlloc -= int64(alloc.size)
	return nil
}

// GetStats returns memory pool statistics
func (mp *MemoryPool) GetStats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

// MemoryStats returns the context's current and peak pool allocation.
func (ctx *Context) MemoryStats() (allocated, peak int64) {
	return ctx.memory.GetStats()
}

// getSystemMemory returns total system memory in bytes
func getSystemMemory() uint64 {
	// Simplified; a production build would query the OS.
	return 16 * 1024 * 1024 * 1024
}
