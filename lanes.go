package lanes

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Device represents a compute device. In lanes, this is the CPU with its
// cores and available memory. Each device has a unique ID and capabilities.
type Device struct {
	ID         int    // Unique device identifier
	Name       string // Human-readable device name
	TotalMem   uint64 // Total available memory in bytes
	NumCores   int    // Number of CPU cores
	MaxThreads int    // Maximum concurrent threads
}

// Context represents an execution context. It owns the memory pool and the
// execution streams, and every Buffer records the Context it was allocated
// from. Buffers from different contexts must never meet in one launch.
type Context struct {
	device        *Device
	mu            sync.Mutex
	streams       map[int]*Stream
	streamID      int32
	memory        *MemoryPool
	defaultStream *Stream
}

// Stream represents an ordered sequence of operations that execute
// asynchronously. Operations within a stream execute in order, but
// operations in different streams may execute concurrently.
type Stream struct {
	id    int
	tasks chan func()
	done  chan struct{}
	wg    sync.WaitGroup
}

// Global runtime state
var (
	defaultDevice  *Device
	defaultContext *Context
	initOnce       sync.Once
)

func init() {
	initOnce.Do(func() {
		defaultDevice = &Device{
			ID:         0,
			Name:       "CPU",
			TotalMem:   getSystemMemory(),
			NumCores:   runtime.NumCPU(),
			MaxThreads: runtime.NumCPU() * 2, // Hyperthreading
		}
		defaultContext = newContext(defaultDevice)
	})
}

func newContext(dev *Device) *Context {
	ctx := &Context{
		device:  dev,
		streams: make(map[int]*Stream),
		memory:  NewMemoryPool(),
	}
	ctx.defaultStream = ctx.CreateStream()
	return ctx
}

// NewContext creates a fresh execution context on the default device.
// Buffers are bound to the context that allocated them; mixing buffers
// from different contexts in one operation fails with a ContextMismatch
// error.
func NewContext() *Context {
	return newContext(defaultDevice)
}

// Alloc allocates a buffer of n elements of the given type on the default
// context.
//
// Example:
//
//	d_data, err := lanes.Alloc(1024, lanes.Float32)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lanes.Free(d_data)
func Alloc(n int, dtype DType) (*Buffer, error) {
	return defaultContext.Alloc(n, dtype)
}

// Free releases a buffer allocated by Alloc.
// It is safe to call Free with a nil Buffer.
func Free(b *Buffer) error {
	return defaultContext.Free(b)
}

// Memcpy copies memory between host slices and device buffers on the
// default context. See Context.Memcpy.
func Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	return defaultContext.Memcpy(dst, src, size, kind)
}

// Launch dispatches a kernel across a 1-D grid on the default context.
// See Context.Launch for the validation and completion semantics.
func Launch(kernel Kernel, nElements, blockSize int, bufs ...*Buffer) (*Handle, error) {
	return defaultContext.Launch(kernel, nElements, blockSize, bufs...)
}

// Add launches element-wise addition of x and y on the default context.
// See Context.Add.
func Add(x, y *Buffer) (*Buffer, *Handle, error) {
	return defaultContext.Add(x, y)
}

// Synchronize waits for all operations on all streams of the default
// context to complete.
//
// Example:
//
//	out, handle, _ := lanes.Add(x, y)
//	err := lanes.Synchronize() // equivalent to handle.Wait for a single launch
func Synchronize() error {
	return defaultContext.Synchronize()
}

// GetDevice returns the current device information.
func GetDevice() *Device {
	return defaultDevice
}

// SetDevice sets the active device (no-op for CPU)
func SetDevice(id int) error {
	if id != 0 {
		return ErrInvalidDevice
	}
	return nil
}

// GetDeviceCount returns the number of available devices.
// lanes always returns 1 as it only executes on the CPU.
func GetDeviceCount() int {
	return 1
}

// GetDeviceProperties returns device properties
func GetDeviceProperties(id int) (*Device, error) {
	if id != 0 {
		return nil, NewInvalidConfigurationError("GetDeviceProperties", fmt.Sprintf("invalid device ID: %d", id))
	}
	return defaultDevice, nil
}

// Context methods

// Device returns the device this context executes on.
func (ctx *Context) Device() *Device {
	return ctx.device
}

// CreateStream creates a new execution stream
func (ctx *Context) CreateStream() *Stream {
	id := int(atomic.AddInt32(&ctx.streamID, 1))
	stream := &Stream{
		id:    id,
		tasks: make(chan func(), 1000),
		done:  make(chan struct{}),
	}

	// Start worker goroutine for stream
	go stream.worker()

	ctx.mu.Lock()
	ctx.streams[id] = stream
	ctx.mu.Unlock()
	return stream
}

// Synchronize waits for all streams to complete
func (ctx *Context) Synchronize() error {
	ctx.mu.Lock()
	streams := make([]*Stream, 0, len(ctx.streams))
	for _, s := range ctx.streams {
		streams = append(streams, s)
	}
	ctx.mu.Unlock()

	for _, stream := range streams {
		stream.Synchronize()
	}
	return nil
}

// Stream methods

// worker processes tasks for a stream
func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.wg.Done()
	}
	close(s.done)
}

// Synchronize waits for all tasks in the stream to complete
func (s *Stream) Synchronize() {
	s.wg.Wait()
}

// Submit adds a task to the stream
func (s *Stream) Submit(task func()) {
	s.wg.Add(1)
	s.tasks <- task
}
