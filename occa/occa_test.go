package occa

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanegrid/lanes"
)

func TestAddKernelSource(t *testing.T) {
	src := addKernelSource(lanes.DefaultBlockSize)
	assert.Contains(t, src, "@kernel void vectorAdd")
	assert.Contains(t, src, "@outer")
	assert.Contains(t, src, "@inner")

	// The inner loop width tracks the core's block size.
	assert.Contains(t, src, fmt.Sprintf("for (int t = 0; t < %d; ++t; @inner)", lanes.DefaultBlockSize))

	// The bound guard must precede the store.
	guard := strings.Index(src, "if (i < N)")
	store := strings.Index(src, "dst[i] = x[i] + y[i];")
	require.GreaterOrEqual(t, guard, 0)
	require.GreaterOrEqual(t, store, 0)
	assert.Less(t, guard, store)
}

func TestAddKernelSourceBlockDecomposition(t *testing.T) {
	src := addKernelSource(64)
	assert.Contains(t, src, "for (int b = 0; b < (N + 63) / 64; ++b; @outer)")
	assert.Contains(t, src, "const int i = b * 64 + t;")
}

// Integration round trip; skipped when no OCCA installation is available.
func TestAddRoundTrip(t *testing.T) {
	dev, err := Open()
	if err != nil {
		t.Skipf("no OCCA device available: %v", err)
	}
	defer dev.Close()
	t.Logf("running on %s device", dev.Mode())

	const n = 10_000 // forces a partial tail block
	x := make([]float32, n)
	y := make([]float32, n)
	for i := range x {
		x[i] = float32(i)
		y[i] = float32(3 * i)
	}

	handle, err := dev.Add(x, y)
	require.NoError(t, err)

	got, err := handle.Wait()
	require.NoError(t, err)
	require.Len(t, got, n)
	for i := 0; i < n; i++ {
		require.Equal(t, x[i]+y[i], got[i], "element %d", i)
	}
}

func TestAddShapeMismatch(t *testing.T) {
	dev, err := Open()
	if err != nil {
		t.Skipf("no OCCA device available: %v", err)
	}
	defer dev.Close()

	_, addErr := dev.Add(make([]float32, 5), make([]float32, 3))
	require.Error(t, addErr)
}

func TestAddEmpty(t *testing.T) {
	dev, err := Open()
	if err != nil {
		t.Skipf("no OCCA device available: %v", err)
	}
	defer dev.Close()

	handle, err := dev.Add(nil, nil)
	require.NoError(t, err)
	got, err := handle.Wait()
	require.NoError(t, err)
	assert.Empty(t, got)
}
