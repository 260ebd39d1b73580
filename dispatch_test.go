package lanes

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Launch must return before the grid finishes executing.
func TestLaunchIsAsynchronous(t *testing.T) {
	const n = 16
	buf := AllocOrFail(t, n, Float32)
	defer Free(buf)

	release := make(chan struct{})
	kernel := KernelFunc(func(blk Block, nElements int, bufs ...*Buffer) error {
		<-release
		return nil
	})

	h, err := Launch(kernel, n, 4, buf)
	require.NoError(t, err)

	// The grid is still blocked on the release channel, so the handle
	// must not be complete yet.
	select {
	case <-h.done:
		t.Fatal("handle completed before the kernel ran")
	default:
	}

	close(release)
	require.NoError(t, h.Wait())
}

func TestLaunchShapeMismatch(t *testing.T) {
	x := AllocOrFail(t, 5, Float32)
	y := AllocOrFail(t, 3, Float32)
	defer Free(x)
	defer Free(y)

	// Mismatched lengths fail before any instance is issued.
	out, handle, err := Add(x, y)
	require.Error(t, err)
	assert.True(t, IsShapeMismatch(err), "expected ShapeMismatch, got %v", err)
	assert.Nil(t, out)
	assert.Nil(t, handle)
}

func TestLaunchDTypeMismatch(t *testing.T) {
	x := AllocOrFail(t, 4, Float32)
	y := AllocOrFail(t, 4, Float64)
	defer Free(x)
	defer Free(y)

	_, _, err := Add(x, y)
	require.Error(t, err)
	assert.True(t, IsShapeMismatch(err), "expected ShapeMismatch, got %v", err)
}

func TestLaunchInvalidConfiguration(t *testing.T) {
	buf := AllocOrFail(t, 8, Float32)
	defer Free(buf)

	_, err := Launch(AddKernel(), 8, 0, buf, buf, buf)
	require.Error(t, err)
	assert.True(t, IsInvalidConfiguration(err))
}

// A nil buffer anywhere in the argument list, including position 0, must
// fail validation rather than dereference.
func TestLaunchNilBuffer(t *testing.T) {
	buf := AllocOrFail(t, 4, Float32)
	defer Free(buf)

	_, err := Launch(AddKernel(), 4, 2, nil, buf, buf)
	require.Error(t, err)
	assert.True(t, IsInvalidConfiguration(err), "expected InvalidConfiguration, got %v", err)

	_, err = Launch(AddKernel(), 4, 2, buf, nil, buf)
	require.Error(t, err)
	assert.True(t, IsInvalidConfiguration(err))
}

func TestLaunchContextMismatch(t *testing.T) {
	other := NewContext()
	x := AllocOrFail(t, 4, Float32)
	defer Free(x)
	y, err := other.Alloc(4, Float32)
	require.NoError(t, err)
	defer other.Free(y)

	_, _, addErr := Add(x, y)
	require.Error(t, addErr)
	assert.True(t, IsContextMismatch(addErr), "expected ContextMismatch, got %v", addErr)
}

func TestLaunchZeroElements(t *testing.T) {
	x := AllocOrFail(t, 0, Float32)
	y := AllocOrFail(t, 0, Float32)
	defer Free(x)
	defer Free(y)

	out, handle, err := Add(x, y)
	require.NoError(t, err)
	require.NoError(t, handle.Wait())
	assert.Equal(t, 0, out.Len())
	Free(out)
}

// A kernel error surfaces from Wait as a DeviceFailure, not from Launch.
func TestDeviceFailureFromKernelError(t *testing.T) {
	buf := AllocOrFail(t, 32, Float32)
	defer Free(buf)

	boom := errors.New("lane fault")
	kernel := KernelFunc(func(blk Block, nElements int, bufs ...*Buffer) error {
		if blk.ID == 1 {
			return boom
		}
		return nil
	})

	h, err := Launch(kernel, 32, 8, buf)
	require.NoError(t, err)

	waitErr := h.Wait()
	require.Error(t, waitErr)
	assert.True(t, IsDeviceFailure(waitErr), "expected DeviceFailure, got %v", waitErr)
	assert.True(t, errors.Is(waitErr, boom))
}

// A panicking block instance must not kill the stream worker; it is
// reported as a DeviceFailure at synchronization.
func TestDeviceFailureFromPanic(t *testing.T) {
	buf := AllocOrFail(t, 8, Float32)
	defer Free(buf)

	kernel := KernelFunc(func(blk Block, nElements int, bufs ...*Buffer) error {
		panic("simulated device fault")
	})

	h, err := Launch(kernel, 8, 8, buf)
	require.NoError(t, err)
	waitErr := h.Wait()
	require.Error(t, waitErr)
	assert.True(t, IsDeviceFailure(waitErr))

	// The stream survives and accepts further launches.
	h2 := LaunchOrFail(t, AddKernel(), 8, 8, buf, buf, buf)
	require.NoError(t, h2.Wait())
}

// Every lane must be covered by exactly one block instance.
func TestBlocksPartitionDomain(t *testing.T) {
	const n = 10_007 // prime, forces a partial tail block
	const blockSize = 64

	buf := AllocOrFail(t, n, Int32)
	defer Free(buf)

	var visits [n]int32
	kernel := KernelFunc(func(blk Block, nElements int, bufs ...*Buffer) error {
		offsets := blk.Offsets()
		mask := MaskFor(offsets, nElements)
		for i, off := range offsets {
			if mask[i] {
				atomic.AddInt32(&visits[off], 1)
				bufs[0].Int32()[off] = int32(blk.ID)
			}
		}
		return nil
	})

	h, err := Launch(kernel, n, blockSize, buf)
	require.NoError(t, err)
	require.NoError(t, h.Wait())

	data := buf.Int32()
	for i := 0; i < n; i++ {
		require.Equal(t, int32(1), visits[i], "lane %d visited %d times", i, visits[i])
		assert.Equal(t, int32(i/blockSize), data[i], "lane %d owned by wrong block", i)
	}
}

// Re-running the same launch with unchanged inputs is bit-identical.
func TestAddIdempotent(t *testing.T) {
	const n = 1000
	x := AllocOrFail(t, n, Float32)
	y := AllocOrFail(t, n, Float32)
	defer Free(x)
	defer Free(y)

	xs, ys := x.Float32(), y.Float32()
	for i := 0; i < n; i++ {
		xs[i] = float32(i) * 0.3
		ys[i] = float32(n-i) * 0.7
	}

	out1, h1, err := Add(x, y)
	require.NoError(t, err)
	require.NoError(t, h1.Wait())
	defer Free(out1)

	out2, h2, err := Add(x, y)
	require.NoError(t, err)
	require.NoError(t, h2.Wait())
	defer Free(out2)

	a, b := out1.Float32(), out2.Float32()
	for i := 0; i < n; i++ {
		require.Equal(t, math.Float32bits(a[i]), math.Float32bits(b[i]),
			"bit difference at %d", i)
	}
}

// The last valid element is written even when it falls in a partially
// masked block.
func TestPartialBlockWritesLastElement(t *testing.T) {
	const n = 10
	const blockSize = 4

	x := AllocOrFail(t, n, Float32)
	y := AllocOrFail(t, n, Float32)
	defer Free(x)
	defer Free(y)

	xs, ys := x.Float32(), y.Float32()
	for i := 0; i < n; i++ {
		xs[i] = float32(i)
		ys[i] = 100
	}

	out := AllocOrFail(t, n, Float32)
	defer Free(out)

	h, err := Launch(AddKernel(), n, blockSize, x, y, out)
	require.NoError(t, err)
	require.NoError(t, h.Wait())

	got := out.Float32()
	assert.Equal(t, float32(109), got[n-1], "last valid element in the masked tail block")
	for i := 0; i < n; i++ {
		assert.Equal(t, float32(i)+100, got[i], "element %d", i)
	}
}
