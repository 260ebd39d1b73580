package lanes

import (
	"fmt"
	"runtime"
	"sync"
)

// Handle is the completion token for one asynchronous launch. The output
// buffer of the launch has undefined content until Wait returns.
type Handle struct {
	done chan struct{}
	mu   sync.Mutex
	err  error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// fail records the first block-instance fault; later faults are dropped.
func (h *Handle) fail(err error) {
	h.mu.Lock()
	if h.err == nil {
		h.err = err
	}
	h.mu.Unlock()
}

// complete marks the launch finished. Must be called exactly once, after
// every block instance has returned.
func (h *Handle) complete() {
	close(h.done)
}

// Wait blocks until every block instance of the launch has completed and
// returns the first fault, if any. All buffer writes made by the launch are
// visible once Wait returns. After a non-nil error the output buffer's
// contents are undefined; the launch is not retried.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Launch dispatches one kernel instance per block of the 1-D grid covering
// nElements with the given block size, against the supplied buffers.
//
// Validation is eager and happens before any instance is issued:
//   - blockSize must be positive (InvalidConfiguration),
//   - every buffer must hold exactly nElements elements of a common element
//     type (ShapeMismatch),
//   - every buffer must belong to this context (ContextMismatch).
//
// The launch itself is asynchronous: Launch returns a completion handle
// immediately and block instances may still be executing. Instances are
// mutually independent, may run in any order or concurrently, and never
// write overlapping output ranges. Faults (including recovered panics)
// surface from Handle.Wait as DeviceFailure errors. Issued instances cannot
// be retracted.
func (ctx *Context) Launch(kernel Kernel, nElements, blockSize int, bufs ...*Buffer) (*Handle, error) {
	return ctx.LaunchStream(kernel, nElements, blockSize, ctx.defaultStream, bufs...)
}

// LaunchStream is Launch on a specific stream.
func (ctx *Context) LaunchStream(kernel Kernel, nElements, blockSize int, stream *Stream, bufs ...*Buffer) (*Handle, error) {
	grid, err := NewGrid(nElements, blockSize)
	if err != nil {
		return nil, err
	}
	if err := ctx.validateBuffers(nElements, bufs); err != nil {
		return nil, err
	}
	return ctx.launchInternal(kernel, grid, stream, bufs), nil
}

func (ctx *Context) validateBuffers(nElements int, bufs []*Buffer) error {
	if len(bufs) == 0 {
		return NewInvalidConfigurationError("Launch", "no buffers supplied")
	}
	for i, b := range bufs {
		if b == nil {
			return NewInvalidConfigurationError("Launch", fmt.Sprintf("buffer %d is nil", i))
		}
	}
	dtype := bufs[0].Type()
	for i, b := range bufs {
		if b.Len() != nElements {
			return NewShapeMismatchError("Launch",
				fmt.Sprintf("buffer %d holds %d elements, launch covers %d", i, b.Len(), nElements))
		}
		if b.Type() != dtype {
			return NewShapeMismatchError("Launch",
				fmt.Sprintf("buffer %d is %s, buffer 0 is %s", i, b.Type(), dtype))
		}
		if b.ctx != ctx {
			return NewContextMismatchError("Launch",
				fmt.Sprintf("buffer %d belongs to a different context", i))
		}
	}
	return nil
}

// launchInternal implements the core grid execution logic.
func (ctx *Context) launchInternal(kernel Kernel, grid Grid, stream *Stream, bufs []*Buffer) *Handle {
	h := newHandle()

	// Handle edge case where the grid is empty
	if grid.NumBlocks == 0 {
		// Submit an empty task to maintain stream ordering
		stream.Submit(func() { h.complete() })
		return h
	}

	// Determine parallelism strategy
	numWorkers := runtime.NumCPU()
	if grid.NumBlocks < numWorkers {
		numWorkers = grid.NumBlocks
	}

	// Cache-aware scheduling: each worker processes multiple blocks
	// to maximize cache reuse
	blocksPerWorker := (grid.NumBlocks + numWorkers - 1) / numWorkers

	stream.Submit(func() {
		var wg sync.WaitGroup
		wg.Add(numWorkers)

		for workerID := 0; workerID < numWorkers; workerID++ {
			startBlock := workerID * blocksPerWorker
			endBlock := startBlock + blocksPerWorker
			if endBlock > grid.NumBlocks {
				endBlock = grid.NumBlocks
			}

			go func(start, end int) {
				defer wg.Done()
				for blockID := start; blockID < end; blockID++ {
					if err := runBlock(kernel, grid.Block(blockID), grid.NElements, bufs); err != nil {
						h.fail(err)
					}
				}
			}(startBlock, endBlock)
		}

		wg.Wait()
		h.complete()
	})

	return h
}

// runBlock executes one block instance, converting panics into device
// failures so a faulting instance cannot take down the stream worker.
func runBlock(kernel Kernel, blk Block, nElements int, bufs []*Buffer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewDeviceFailureError("Launch",
				fmt.Sprintf("block %d faulted: %v", blk.ID, r), nil)
		}
	}()
	if err := kernel.Execute(blk, nElements, bufs...); err != nil {
		return NewDeviceFailureError("Launch",
			fmt.Sprintf("block %d failed", blk.ID), err)
	}
	return nil
}
