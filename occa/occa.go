// Package occa executes the element-wise addition grid through an OCCA
// device (OpenMP, CUDA or Serial backends). The OKL kernel uses the same
// block decomposition as the core: @outer iterates blocks, @inner iterates
// lanes, and an explicit bound guard masks the tail block.
package occa

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"

	"github.com/lanegrid/lanes"
)

// DefaultProps lists the device configurations tried by Open, in order of
// preference: parallel backends first, Serial as the fallback.
var DefaultProps = []string{
	`{"mode": "OpenMP"}`,
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "Serial"}`,
}

// Device wraps an OCCA device with the compiled addition kernel.
type Device struct {
	dev    *gocca.OCCADevice
	kernel *gocca.OCCAKernel
}

// Open creates an OCCA device. With no arguments it walks DefaultProps;
// otherwise the given JSON property strings are tried in order.
func Open(props ...string) (*Device, error) {
	if len(props) == 0 {
		props = DefaultProps
	}

	var dev *gocca.OCCADevice
	var err error
	for _, p := range props {
		dev, err = gocca.NewDevice(p)
		if err == nil {
			break
		}
	}
	if dev == nil {
		return nil, fmt.Errorf("occa: no device could be created: %w", err)
	}

	kernel, err := dev.BuildKernelFromString(addKernelSource(lanes.DefaultBlockSize), "vectorAdd", nil)
	if err != nil {
		dev.Free()
		return nil, fmt.Errorf("occa: kernel build failed: %w", err)
	}

	return &Device{dev: dev, kernel: kernel}, nil
}

// Mode reports the backend mode of the underlying device.
func (d *Device) Mode() string {
	return d.dev.Mode()
}

// Close frees the kernel and the device.
func (d *Device) Close() {
	if d.kernel != nil {
		d.kernel.Free()
		d.kernel = nil
	}
	if d.dev != nil {
		d.dev.Free()
		d.dev = nil
	}
}

// Handle is the completion token for one dispatched grid. The result is
// read back at Wait time, after the device has drained the launch.
type Handle struct {
	d      *Device
	xm     *gocca.OCCAMemory
	ym     *gocca.OCCAMemory
	dstm   *gocca.OCCAMemory
	n      int
	waited bool
}

// Wait blocks until the launch has completed on the device, copies the
// result to the host and releases the device memory.
func (h *Handle) Wait() ([]float32, error) {
	if h.waited {
		return nil, lanes.NewInvalidConfigurationError("occa.Wait", "handle already waited on")
	}
	h.waited = true

	if h.n == 0 {
		return []float32{}, nil
	}

	// Kernel launches are asynchronous until Finish.
	h.d.dev.Finish()

	out := make([]float32, h.n)
	h.dstm.CopyTo(unsafe.Pointer(&out[0]), int64(h.n*4))

	h.xm.Free()
	h.ym.Free()
	h.dstm.Free()
	return out, nil
}

// Add uploads x and y, dispatches the addition grid and returns a
// completion handle. Mismatched lengths fail before anything is issued.
func (d *Device) Add(x, y []float32) (*Handle, error) {
	if len(x) != len(y) {
		return nil, lanes.NewShapeMismatchError("occa.Add",
			fmt.Sprintf("x holds %d elements, y holds %d", len(x), len(y)))
	}
	n := len(x)
	if n == 0 {
		return &Handle{d: d, n: 0}, nil
	}

	xm := d.dev.Malloc(int64(n*4), unsafe.Pointer(&x[0]), nil)
	ym := d.dev.Malloc(int64(n*4), unsafe.Pointer(&y[0]), nil)
	dstm := d.dev.Malloc(int64(n*4), nil, nil)

	if err := d.kernel.RunWithArgs(int32(n), xm, ym, dstm); err != nil {
		xm.Free()
		ym.Free()
		dstm.Free()
		return nil, lanes.NewDeviceFailureError("occa.Add", "kernel launch failed", err)
	}

	return &Handle{d: d, xm: xm, ym: ym, dstm: dstm, n: n}, nil
}

// addKernelSource generates the OKL addition kernel for the given block
// size; the i < N guard masks lanes of the partial tail block.
func addKernelSource(blockSize int) string {
	return fmt.Sprintf(`
@kernel void vectorAdd(const int N,
                       const float *x,
                       const float *y,
                       float *dst) {
	for (int b = 0; b < (N + %d) / %d; ++b; @outer) {
		for (int t = 0; t < %d; ++t; @inner) {
			const int i = b * %d + t;
			if (i < N) {
				dst[i] = x[i] + y[i];
			}
		}
	}
}`, blockSize-1, blockSize, blockSize, blockSize)
}
