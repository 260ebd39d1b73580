package lanes

import "fmt"

// Block identifies one unit of parallel work covering a contiguous
// sub-range of the problem domain. ID is the block's position in the launch
// grid; Size is the lane count, constant across the grid.
type Block struct {
	ID   int
	Size int
}

// Range returns the half-open index interval [ID*Size, ID*Size+Size) owned
// by the block. The interval is not clamped: its upper lanes may exceed the
// launch's element count by at most Size-1, and such lanes must be masked
// before any memory access.
func (b Block) Range() (lo, hi int) {
	lo = b.ID * b.Size
	return lo, lo + b.Size
}

// Offsets returns the candidate element offsets of the block's lanes,
// ID*Size + [0, Size).
func (b Block) Offsets() []int {
	lo, hi := b.Range()
	offsets := make([]int, 0, b.Size)
	for i := lo; i < hi; i++ {
		offsets = append(offsets, i)
	}
	return offsets
}

// NumBlocks returns ceil(nElements / blockSize), the number of blocks
// needed to cover nElements. A non-positive block size fails with an
// InvalidConfiguration error. Zero elements need zero blocks.
func NumBlocks(nElements, blockSize int) (int, error) {
	if blockSize <= 0 {
		return 0, NewInvalidConfigurationError("NumBlocks", fmt.Sprintf("block size must be positive, got %d", blockSize))
	}
	if nElements < 0 {
		return 0, NewInvalidConfigurationError("NumBlocks", fmt.Sprintf("element count must be non-negative, got %d", nElements))
	}
	return (nElements + blockSize - 1) / blockSize, nil
}

// Grid is the full set of blocks for one launch. It is created fresh per
// launch and has no identity beyond it.
type Grid struct {
	NumBlocks int
	BlockSize int
	NElements int
}

// NewGrid derives the 1-D grid covering nElements with the given block
// size.
func NewGrid(nElements, blockSize int) (Grid, error) {
	nb, err := NumBlocks(nElements, blockSize)
	if err != nil {
		return Grid{}, err
	}
	return Grid{NumBlocks: nb, BlockSize: blockSize, NElements: nElements}, nil
}

// Block returns the descriptor for block id in [0, NumBlocks).
func (g Grid) Block(id int) Block {
	return Block{ID: id, Size: g.BlockSize}
}
