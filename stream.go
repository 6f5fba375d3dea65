package openmm

import (
	"unsafe"
)

// DeviceObject is the interface for objects resident in both the host and the
// accelerator memory space. The simulation setup code manages collections of
// these without caring about element types.
type DeviceObject interface {
	Allocate() error
	Deallocate() error
	Upload() error
	Download() error
}

// Stream is a typed array resident in both memory spaces at once. It owns one
// contiguous host allocation and one contiguous device allocation, each
// holding subStreams logical sub-arrays padded out to a common stride. The
// two copies are synchronized only by explicit Upload/Download calls.
//
// A Stream is a passive, single-threaded structure: it carries no internal
// locking, and concurrent host-side writers must synchronize externally.
type Stream[T Element] struct {
	ctx        *Context
	length     int // live elements per substream
	subStreams int
	stride     int // padded elements per substream, multiple of StrideAlignment
	hostData   []T // stride*subStreams elements, flat
	devData    DevicePtr
	hostViews  [][]T
	devViews   []DevicePtr
	name       string // diagnostic name, used only in failure messages
}

// New creates a stream on the default context and allocates both memory
// spaces immediately. length is the live element count per substream and must
// be non-negative; subStreams must be positive. name appears only in failure
// diagnostics.
func New[T Element](length, subStreams int, name string) (*Stream[T], error) {
	return NewStream[T](defaultContext, length, subStreams, name)
}

// MustNew is New with the engine's historical allocate-or-die policy: on
// allocation failure it reports the diagnostic and terminates the process.
func MustNew[T Element](length, subStreams int, name string) *Stream[T] {
	s, err := New[T](length, subStreams, name)
	Check(err)
	return s
}

// NewStream creates a stream on an explicit context.
func NewStream[T Element](ctx *Context, length, subStreams int, name string) (*Stream[T], error) {
	if length < 0 {
		return nil, NewInvalidArgError("NewStream", "negative length")
	}
	if subStreams < 1 {
		return nil, NewInvalidArgError("NewStream", "subStreams must be positive")
	}
	s := &Stream[T]{
		ctx:        ctx,
		length:     length,
		subStreams: subStreams,
		stride:     (length + StrideAlignment - 1) &^ (StrideAlignment - 1),
		name:       name,
	}
	if err := s.Allocate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stream[T]) elemSize() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Allocate creates the host and device allocations and computes the
// per-substream views. It is called by NewStream; calling it on an already
// allocated stream leaks the previous device allocation.
func (s *Stream[T]) Allocate() error {
	total := s.stride * s.subStreams
	s.hostData = make([]T, total)

	if total > 0 {
		dev, err := s.ctx.Malloc(total * s.elemSize())
		if err != nil {
			return NewAllocationError("Allocate", s.name, "device malloc failed", err)
		}
		s.devData = dev
	}

	s.hostViews = make([][]T, s.subStreams)
	s.devViews = make([]DevicePtr, s.subStreams)
	s.remapViews(s.stride, s.subStreams)
	return nil
}

// remapViews derives the substream views from the base allocations. Views are
// pure functions of (base, stride); they must be recomputed whenever either
// changes and never freed on their own.
func (s *Stream[T]) remapViews(stride, subStreams int) {
	for i := 0; i < subStreams; i++ {
		lo := i * stride
		s.hostViews[i] = s.hostData[lo : lo+stride : lo+stride]
		if !s.devData.IsNil() {
			s.devViews[i] = s.devData.Offset(lo * s.elemSize())
		}
	}
}

// Deallocate releases both allocations and clears the views. The stream must
// not be used afterwards; deallocating twice is an error on the device side.
func (s *Stream[T]) Deallocate() error {
	s.hostData = nil
	s.hostViews = nil
	s.devViews = nil

	dev := s.devData
	s.devData = DevicePtr{}
	if dev.IsNil() {
		return nil
	}
	if err := s.ctx.Free(dev); err != nil {
		return NewDeallocationError("Deallocate", s.name, "device free failed", err)
	}
	return nil
}

// Upload copies the entire host allocation to the device in one synchronous
// transfer. Device-side writes that were not downloaded first are overwritten;
// last writer wins.
func (s *Stream[T]) Upload() error {
	bytes := len(s.hostData) * s.elemSize()
	if bytes == 0 {
		return nil
	}
	if err := s.ctx.Memcpy(s.devData, hostPtr(s.hostData), bytes, MemcpyHostToDevice); err != nil {
		return NewTransferError("Upload", s.name, "host to device copy failed", err)
	}
	return nil
}

// Download copies the entire device allocation back to the host. There is no
// partial-transfer primitive; callers needing partial visibility download and
// then index.
func (s *Stream[T]) Download() error {
	bytes := len(s.hostData) * s.elemSize()
	if bytes == 0 {
		return nil
	}
	if err := s.ctx.Memcpy(hostPtr(s.hostData), s.devData, bytes, MemcpyDeviceToHost); err != nil {
		return NewTransferError("Download", s.name, "device to host copy failed", err)
	}
	return nil
}

// At returns a mutable reference to element index of the flat host
// allocation. The index space is stride-aware and spans
// [0, Stride()*SubStreams()): padding slots are addressable, and callers must
// do their own stride arithmetic. Bounds are not validated against the live
// length.
func (s *Stream[T]) At(index int) *T {
	return &s.hostData[index]
}

// Sub returns the host-side view of substream i: a slice of Stride() elements
// beginning i*Stride() into the flat allocation. The view aliases the host
// allocation and must not outlive the stream.
func (s *Stream[T]) Sub(i int) []T {
	return s.hostViews[i]
}

// DeviceView returns the device-side view of substream i. The returned
// pointer aliases the device allocation; it must not be freed.
func (s *Stream[T]) DeviceView(i int) DevicePtr {
	return s.devViews[i]
}

// Data returns the flat host allocation, stride*subStreams elements long.
func (s *Stream[T]) Data() []T {
	return s.hostData
}

// DeviceData returns the base device allocation.
func (s *Stream[T]) DeviceData() DevicePtr {
	return s.devData
}

// Len returns the live element count per substream.
func (s *Stream[T]) Len() int { return s.length }

// Stride returns the padded element count per substream.
func (s *Stream[T]) Stride() int { return s.stride }

// SubStreams returns the number of substreams.
func (s *Stream[T]) SubStreams() int { return s.subStreams }

// Name returns the diagnostic name.
func (s *Stream[T]) Name() string { return s.name }

// Collapse re-partitions the stream's live data from subStreams sub-arrays of
// the current length into newStreams sub-arrays of length
// length*subStreams/newStreams, redistributing elements round-robin across
// the destination substreams in blocks of interleave consecutive elements
// (interleave 1 is element-by-element). The total allocation is unchanged;
// only the view geometry and the host data arrangement move.
//
// Only the host copy is rewritten. The device copy is stale after Collapse
// and must be re-uploaded before the next kernel that reads this stream.
func (s *Stream[T]) Collapse(newStreams, interleave int) error {
	if newStreams < 1 {
		return NewShapeError("Collapse", s.name, "newStreams must be positive")
	}
	if interleave < 1 {
		return NewShapeError("Collapse", s.name, "interleave must be positive")
	}
	if (s.length*s.subStreams)%newStreams != 0 {
		return NewShapeError("Collapse", s.name, "newStreams does not evenly partition the live data")
	}
	if (s.stride*s.subStreams)%newStreams != 0 {
		return NewShapeError("Collapse", s.name, "newStreams does not evenly partition the allocation")
	}
	newStride := s.stride * s.subStreams / newStreams
	newLength := s.length * s.subStreams / newStreams
	if newLength%interleave != 0 {
		return NewShapeError("Collapse", s.name, "interleave does not evenly divide the collapsed length")
	}

	scratch := make([]T, s.stride*s.subStreams)

	// Linearize the live data in row-major (i, j) order, dealing it out to
	// the destination substreams in interleave-sized blocks.
	k := 0
	for i := 0; i < s.length; i++ {
		for j := 0; j < s.subStreams; j++ {
			block := k / interleave
			within := k % interleave
			stream := block % newStreams
			pos := (block/newStreams)*interleave + within
			scratch[stream*newStride+pos] = s.hostViews[j][i]
			k++
		}
	}

	// Remap the views before touching the primary allocation again: every
	// read below goes through the new geometry.
	s.hostViews = make([][]T, newStreams)
	s.devViews = make([]DevicePtr, newStreams)
	s.remapViews(newStride, newStreams)

	// Copy the rearranged data back into the primary allocation.
	for i := 0; i < newLength; i++ {
		for j := 0; j < newStreams; j++ {
			s.hostViews[j][i] = scratch[j*newStride+i]
		}
	}

	s.stride = newStride
	s.length = newLength
	s.subStreams = newStreams
	return nil
}
