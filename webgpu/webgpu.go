// Package webgpu executes the element-wise addition grid on a real GPU
// through WebGPU compute shaders. It mirrors the core launch model: the
// dispatch is asynchronous and output contents are valid only after the
// completion handle has been waited on.
//
// The WGSL kernel carries the same boundary mask as the CPU path: lanes
// whose global invocation id is at or beyond the element count return
// before touching storage.
package webgpu

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/openfluke/webgpu/wgpu"

	"github.com/lanegrid/lanes"
)

// Device wraps a WebGPU adapter ready to run compute work.
type Device struct {
	dev        *wgpu.Device
	queue      *wgpu.Queue
	workgroupX int
	release    func()
}

// Open brings up an instance, adapter, device and queue. The workgroup
// width matches the core's default block size.
func Open() (*Device, error) {
	inst := wgpu.CreateInstance(nil)
	if inst == nil {
		return nil, fmt.Errorf("webgpu: CreateInstance returned nil")
	}

	ad, err := inst.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil || ad == nil {
		inst.Release()
		return nil, fmt.Errorf("webgpu: RequestAdapter failed")
	}

	dev, err := ad.RequestDevice(&wgpu.DeviceDescriptor{})
	if err != nil || dev == nil {
		ad.Release()
		inst.Release()
		return nil, fmt.Errorf("webgpu: RequestDevice failed")
	}

	return &Device{
		dev:        dev,
		queue:      dev.GetQueue(),
		workgroupX: lanes.DefaultBlockSize,
		release: func() {
			dev.Release()
			ad.Release()
			inst.Release()
		},
	}, nil
}

// Close releases the device, adapter and instance.
func (d *Device) Close() {
	if d.release != nil {
		d.release()
		d.release = nil
	}
}

// Buffer is a float32 storage buffer resident on the device.
type Buffer struct {
	buf *wgpu.Buffer
	n   int
}

// Len returns the element count.
func (b *Buffer) Len() int { return b.n }

// Release frees the device buffer.
func (b *Buffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

// NewBuffer uploads data into a fresh device-resident storage buffer.
func (d *Device) NewBuffer(data []float32) (*Buffer, error) {
	n := len(data)
	if n == 0 {
		return &Buffer{n: 0}, nil
	}
	buf, err := d.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "lanes_storage",
		Size:  uint64(n * 4),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, err
	}
	d.queue.WriteBuffer(buf, 0, unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), n*4))
	return &Buffer{buf: buf, n: n}, nil
}

// Handle is the completion token for one dispatched grid.
type Handle struct {
	dev  *wgpu.Device
	done bool
}

// Wait blocks until the device has drained the submitted work. Output
// buffers written by the dispatch are undefined before Wait returns. A
// device that never drains surfaces as a DeviceFailure.
func (h *Handle) Wait() error {
	if h.done || h.dev == nil {
		return nil
	}
	if !pollDevice(h.dev, 1000) {
		return lanes.NewDeviceFailureError("webgpu.Wait", "device poll timed out", nil)
	}
	h.done = true
	return nil
}

// Add dispatches element-wise addition of x and y across a 1-D grid and
// returns the output buffer with a completion handle. Validation is eager:
// mismatched lengths fail before anything is submitted.
func (d *Device) Add(x, y *Buffer) (*Buffer, *Handle, error) {
	if x.Len() != y.Len() {
		return nil, nil, lanes.NewShapeMismatchError("webgpu.Add",
			fmt.Sprintf("x holds %d elements, y holds %d", x.Len(), y.Len()))
	}
	n := x.Len()
	if n == 0 {
		return &Buffer{n: 0}, &Handle{}, nil
	}

	numBlocks, err := lanes.NumBlocks(n, d.workgroupX)
	if err != nil {
		return nil, nil, err
	}

	module, err := d.dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "lanes_add_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: addShader(d.workgroupX, n)},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("CreateShaderModule: %w", err)
	}
	defer module.Release()

	bgl, err := d.dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "lanes_add_bgl",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 1, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return nil, nil, err
	}
	defer bgl.Release()

	pl, err := d.dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "lanes_add_pl",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return nil, nil, err
	}
	defer pl.Release()

	pipeline, err := d.dev.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "lanes_add_pipeline",
		Layout: pl,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return nil, nil, err
	}
	defer pipeline.Release()

	outBuf, err := d.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "lanes_add_output",
		Size:  uint64(n * 4),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, nil, err
	}
	out := &Buffer{buf: outBuf, n: n}

	bg, err := d.dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "lanes_add_bg",
		Layout: bgl,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: x.buf, Offset: 0, Size: x.buf.GetSize()},
			{Binding: 1, Buffer: y.buf, Offset: 0, Size: y.buf.GetSize()},
			{Binding: 2, Buffer: outBuf, Offset: 0, Size: outBuf.GetSize()},
		},
	})
	if err != nil {
		out.Release()
		return nil, nil, err
	}
	defer bg.Release()

	enc, err := d.dev.CreateCommandEncoder(nil)
	if err != nil {
		out.Release()
		return nil, nil, err
	}
	pass := enc.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.DispatchWorkgroups(uint32(numBlocks), 1, 1)
	pass.End()

	cb, err := enc.Finish(nil)
	if err != nil {
		out.Release()
		return nil, nil, lanes.NewDeviceFailureError("webgpu.Add", "command encoding failed", err)
	}
	d.queue.Submit(cb)

	return out, &Handle{dev: d.dev}, nil
}

// Read copies a device buffer back to the host. The source dispatch must
// have been waited on first.
func (d *Device) Read(b *Buffer) ([]float32, error) {
	if b.n == 0 {
		return []float32{}, nil
	}

	readback, err := d.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "lanes_readback",
		Size:  uint64(b.n * 4),
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return nil, err
	}
	defer readback.Release()

	enc, err := d.dev.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	enc.CopyBufferToBuffer(b.buf, 0, readback, 0, uint64(b.n*4))
	cb, err := enc.Finish(nil)
	if err != nil {
		return nil, err
	}
	d.queue.Submit(cb)

	if !pollDevice(d.dev, 1000) {
		return nil, lanes.NewDeviceFailureError("webgpu.Read", "device poll timed out", nil)
	}
	done := false
	readback.MapAsync(wgpu.MapModeRead, 0, uint64(b.n*4), func(wgpu.BufferMapAsyncStatus) { done = true })
	for i := 0; i < 1000 && !done; i++ {
		d.dev.Poll(true, nil)
	}
	if !done {
		return nil, lanes.NewDeviceFailureError("webgpu.Read", "buffer map timed out", nil)
	}

	data := readback.GetMappedRange(0, 0) // 0 means whole buffer
	out := make([]float32, b.n)
	copy(out, unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), b.n))
	readback.Unmap()

	return out, nil
}

// pollDevice drives the device until its queue is empty, reporting whether
// it drained within the iteration budget.
func pollDevice(dev *wgpu.Device, maxIter int) bool {
	for i := 0; i < maxIter; i++ {
		if dev.Poll(true, nil) {
			return true
		}
		time.Sleep(100 * time.Microsecond)
	}
	return false
}
