package lanes

import (
	"testing"
)

// AllocOrFail allocates a buffer and fails the test if unsuccessful
func AllocOrFail(t testing.TB, n int, dtype DType) *Buffer {
	t.Helper()
	buf, err := Alloc(n, dtype)
	if err != nil {
		t.Fatalf("Failed to allocate %d %s elements: %v", n, dtype, err)
	}
	return buf
}

// MemcpyOrFail copies data and fails the test if unsuccessful
func MemcpyOrFail(t testing.TB, dst, src interface{}, size int, kind MemcpyKind) {
	t.Helper()
	if err := Memcpy(dst, src, size, kind); err != nil {
		t.Fatalf("Memcpy failed: %v", err)
	}
}

// LaunchOrFail launches a kernel and fails the test if unsuccessful
func LaunchOrFail(t testing.TB, kernel Kernel, nElements, blockSize int, bufs ...*Buffer) *Handle {
	t.Helper()
	h, err := Launch(kernel, nElements, blockSize, bufs...)
	if err != nil {
		t.Fatalf("Kernel launch failed: %v", err)
	}
	return h
}

// WaitOrFail waits on a completion handle and fails the test on error
func WaitOrFail(t testing.TB, h *Handle) {
	t.Helper()
	if err := h.Wait(); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
}

// SynchronizeOrFail synchronizes and fails the test if unsuccessful
func SynchronizeOrFail(t testing.TB) {
	t.Helper()
	if err := Synchronize(); err != nil {
		t.Fatalf("Synchronize failed: %v", err)
	}
}
