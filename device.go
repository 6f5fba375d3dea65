package openmm

import (
	"runtime"
	"sync"
	"unsafe"
)

// MemcpyKind specifies the direction of memory transfer.
// The simulated device lives in ordinary process memory, so all directions
// reduce to a flat copy, but the direction is kept on the API for parity with
// accelerator runtimes and for diagnostics.
type MemcpyKind int

const (
	MemcpyHostToHost     MemcpyKind = iota // Host to host transfer
	MemcpyHostToDevice                     // Host to device transfer
	MemcpyDeviceToHost                     // Device to host transfer
	MemcpyDeviceToDevice                   // Device to device transfer
)

// Device represents the compute device backing the accelerator memory space.
type Device struct {
	ID       int    // Unique device identifier
	Name     string // Human-readable device name
	TotalMem uint64 // Total available memory in bytes
	NumCores int    // Number of CPU cores
}

// deviceAllocator is the seam between streams and the device memory backend.
// The production backend is the pooled allocator below; tests substitute a
// failing allocator to exercise the fatal path without exhausting memory.
type deviceAllocator interface {
	Allocate(size int) (DevicePtr, error)
	Free(ptr DevicePtr) error
}

// Context represents an execution context for device operations. It manages
// device memory allocation and transfers. A single default context is created
// at init time; explicit contexts exist mainly for tests.
type Context struct {
	device *Device
	memory deviceAllocator
}

// DevicePtr represents a pointer into accelerator memory. It supports pointer
// arithmetic through the Offset method and typed slice views for host-side
// inspection of the simulated device space.
type DevicePtr struct {
	ptr    unsafe.Pointer
	size   int
	offset int
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
			ID:       0,
			Name:     deviceName(),
			TotalMem: getSystemMemory(),
			NumCores: runtime.NumCPU(),
		}
		defaultContext = &Context{
			device: defaultDevice,
			memory: NewMemoryPool(),
		}
	})
}

// Default returns the process-wide device context.
func Default() *Context {
	return defaultContext
}

// NewContext creates an independent context with its own memory pool.
func NewContext() *Context {
	return &Context{
		device: defaultDevice,
		memory: NewMemoryPool(),
	}
}

// newContextWith builds a context over an arbitrary allocator (tests only).
func newContextWith(alloc deviceAllocator) *Context {
	return &Context{device: defaultDevice, memory: alloc}
}

// GetDevice returns the device backing this context.
func (ctx *Context) GetDevice() *Device {
	return ctx.device
}

// Malloc allocates device memory of the specified size in bytes.
func (ctx *Context) Malloc(size int) (DevicePtr, error) {
	return ctx.memory.Allocate(size)
}

// Free releases device memory allocated by Malloc.
func (ctx *Context) Free(ptr DevicePtr) error {
	return ctx.memory.Free(ptr)
}

// Memcpy copies size bytes between host and device memory. The transfer is
// synchronous: when the call returns, the destination holds the bytes the
// source held at the moment of the call.
func (ctx *Context) Memcpy(dst, src DevicePtr, size int, kind MemcpyKind) error {
	if size < 0 {
		return NewInvalidArgError("Memcpy", "negative transfer size")
	}
	if size == 0 {
		return nil
	}
	if dst.ptr == nil || src.ptr == nil {
		return NewInvalidArgError("Memcpy", "nil pointer in transfer")
	}
	if size > dst.size || size > src.size {
		return NewTransferError("Memcpy", "", "transfer exceeds allocation", nil)
	}
	copy(unsafe.Slice((*byte)(dst.ptr), size), unsafe.Slice((*byte)(src.ptr), size))
	return nil
}

// hostPtr wraps a host slice's backing array as a DevicePtr-shaped operand so
// Memcpy can move bytes in either direction with one code path.
func hostPtr[T Element](data []T) DevicePtr {
	if len(data) == 0 {
		return DevicePtr{}
	}
	size := len(data) * int(unsafe.Sizeof(data[0]))
	return DevicePtr{ptr: unsafe.Pointer(&data[0]), size: size}
}

// MemoryPool manages device memory allocation with efficient reuse.
// It maintains a free list of previously allocated blocks to reduce
// allocation overhead and fragmentation across stream reallocation.
type MemoryPool struct {
	mu         sync.Mutex
	allocated  map[uintptr]*allocation
	freeList   []*allocation
	totalAlloc int64
	peakAlloc  int64
}

type allocation struct {
	buf  []byte
	ptr  unsafe.Pointer
	size int
	used bool
}

// NewMemoryPool creates a new memory pool for the simulated device space.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		allocated: make(map[uintptr]*allocation),
	}
}

// Allocate allocates memory from the pool
func (mp *MemoryPool) Allocate(size int) (DevicePtr, error) {
	if size <= 0 {
		return DevicePtr{}, ErrInvalidSize
	}

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

			return DevicePtr{ptr: alloc.ptr, size: size}, nil
		}
	}

	// Allocate new memory; keeping the slice in the allocation record holds
	// it live for the GC while raw pointers circulate.
	buf := make([]byte, alignedSize)
	ptr := unsafe.Pointer(&buf[0])

	alloc := &allocation{
		buf:  buf,
		ptr:  ptr,
		size: alignedSize,
		used: true,
	}
	mp.allocated[uintptr(ptr)] = alloc

	mp.totalAlloc += int64(alignedSize)
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}

	return DevicePtr{ptr: ptr, size: size}, nil
}

// Free returns memory to the pool
func (mp *MemoryPool) Free(ptr DevicePtr) error {
	if ptr.ptr == nil {
		return nil
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	alloc, ok := mp.allocated[uintptr(ptr.ptr)]
	if !ok {
		return NewDeviceError("Free", "pointer not found in allocation pool", nil)
	}
	if !alloc.used {
		return ErrDoubleFree
	}

	alloc.used = false
	mp.freeList = append(mp.freeList, alloc)
	mp.totalAlloc -= int64(alloc.size)

	return nil
}

// GetStats returns current and peak allocated byte counts.
func (mp *MemoryPool) GetStats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

// DevicePtr methods

// IsNil reports whether the pointer refers to no allocation.
func (d DevicePtr) IsNil() bool {
	return d.ptr == nil
}

// Size returns the size in bytes of the memory region
func (d DevicePtr) Size() int {
	return d.size
}

// Offset returns a new DevicePtr advanced by the given number of bytes.
// The returned DevicePtr aliases the same underlying allocation; it must not
// be passed to Free.
func (d DevicePtr) Offset(bytes int) DevicePtr {
	return DevicePtr{
		ptr:    unsafe.Pointer(uintptr(d.ptr) + uintptr(bytes)),
		size:   d.size - bytes,
		offset: d.offset + bytes,
	}
}

// Float32 returns a float32 slice view of the device memory.
func (d DevicePtr) Float32() []float32 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*float32)(d.ptr), d.size/4)
}

// Float64 returns a float64 slice view of the device memory.
func (d DevicePtr) Float64() []float64 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*float64)(d.ptr), d.size/8)
}

// Int32 returns an int32 slice view of the device memory.
func (d DevicePtr) Int32() []int32 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*int32)(d.ptr), d.size/4)
}

// Byte returns a byte slice view covering the whole memory region.
func (d DevicePtr) Byte() []byte {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(d.ptr), d.size)
}
