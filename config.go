// Package lanes configuration constants
package lanes

// Block and grid dimensions
const (
	// Default block size for kernel launches
	DefaultBlockSize = 256

	// Maximum lanes per block (CUDA compatibility)
	MaxBlockSize = 1024
)

// Memory pool parameters
const (
	// Memory alignment for allocations (cache line / SIMD width)
	MemoryAlignment = 64

	// Minimum allocation size to prevent fragmentation
	MinAllocationSize = 64
)

// Numerical constants
const (
	// Machine epsilon for float32
	Float32Epsilon = 1.192092896e-07
)
