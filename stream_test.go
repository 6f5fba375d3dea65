package openmm

import (
	"math/rand"
	"testing"
)

// Test the stride padding invariant across a range of lengths
func TestStridePadding(t *testing.T) {
	lengths := []int{0, 1, 2, 15, 16, 17, 31, 32, 33, 100, 1000, 4097}

	for _, length := range lengths {
		s, err := New[float32](length, 1, "pad")
		if err != nil {
			t.Fatalf("Failed to create stream of length %d: %v", length, err)
		}

		stride := s.Stride()
		if stride < length {
			t.Errorf("length %d: stride %d is smaller than length", length, stride)
		}
		if stride%StrideAlignment != 0 {
			t.Errorf("length %d: stride %d is not a multiple of %d", length, stride, StrideAlignment)
		}
		if stride-length >= StrideAlignment {
			t.Errorf("length %d: stride %d overpads by %d", length, stride, stride-length)
		}

		if err := s.Deallocate(); err != nil {
			t.Fatalf("Failed to deallocate: %v", err)
		}
	}
}

// Test that negative lengths and bad substream counts are rejected
func TestNewStreamArguments(t *testing.T) {
	if _, err := New[float32](-1, 1, "neg"); err == nil {
		t.Error("Expected error for negative length")
	}
	if _, err := New[float32](10, 0, "zero"); err == nil {
		t.Error("Expected error for zero subStreams")
	}
}

// Test that substream views begin exactly i*stride elements into the base
func TestViewConsistency(t *testing.T) {
	shapes := []struct {
		length, subStreams int
	}{
		{10, 1},
		{10, 3},
		{16, 4},
		{33, 2},
	}

	for _, shape := range shapes {
		s, err := New[float32](shape.length, shape.subStreams, "views")
		if err != nil {
			t.Fatalf("Failed to create stream: %v", err)
		}

		stride := s.Stride()
		for i := 0; i < shape.subStreams; i++ {
			// Write through the flat accessor, read through the view.
			*s.At(i*stride) = float32(1000 + i)
			if got := s.Sub(i)[0]; got != float32(1000+i) {
				t.Errorf("shape %dx%d: view %d does not start at offset %d (got %f)",
					shape.length, shape.subStreams, i, i*stride, got)
			}
			if len(s.Sub(i)) != stride {
				t.Errorf("shape %dx%d: view %d has length %d, want stride %d",
					shape.length, shape.subStreams, i, len(s.Sub(i)), stride)
			}

			dev := s.DeviceView(i)
			if want := i * stride * 4; dev.offset != want {
				t.Errorf("shape %dx%d: device view %d at byte offset %d, want %d",
					shape.length, shape.subStreams, i, dev.offset, want)
			}
		}

		s.Deallocate()
	}
}

// Test that a full upload/download round trip preserves the host copy exactly
func TestUploadDownloadRoundTrip(t *testing.T) {
	s, err := New[float32](1000, 2, "roundtrip")
	if err != nil {
		t.Fatalf("Failed to create stream: %v", err)
	}
	defer s.Deallocate()

	// Fill the whole padded span, padding slots included.
	data := s.Data()
	for i := range data {
		data[i] = rand.Float32()
	}
	want := append([]float32(nil), data...)

	if err := s.Upload(); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	// Scribble over the host copy, then restore it from the device.
	for i := range data {
		data[i] = -1
	}
	if err := s.Download(); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("Round trip corrupted element %d: %f vs %f", i, data[i], want[i])
		}
	}
}

// Test that upload overwrites device-side writes (last writer wins)
func TestUploadOverwritesDevice(t *testing.T) {
	s, err := New[float32](16, 1, "lastwriter")
	if err != nil {
		t.Fatalf("Failed to create stream: %v", err)
	}
	defer s.Deallocate()

	dev := s.DeviceData().Float32()
	dev[0] = 42

	s.Data()[0] = 7
	if err := s.Upload(); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if dev[0] != 7 {
		t.Errorf("Device write survived upload: got %f, want 7", dev[0])
	}
}

// Test that the flat accessor spans the padding region
func TestAccessorReachesPadding(t *testing.T) {
	s, err := New[int32](10, 2, "padding")
	if err != nil {
		t.Fatalf("Failed to create stream: %v", err)
	}
	defer s.Deallocate()

	// Indices in [length, stride) are padding but must remain addressable.
	last := s.Stride()*s.SubStreams() - 1
	*s.At(10) = 123
	*s.At(last) = 456
	if *s.At(10) != 123 || *s.At(last) != 456 {
		t.Error("Padding slots are not addressable through the flat accessor")
	}
}

// Test zero-length streams allocate and transfer without errors
func TestZeroLengthStream(t *testing.T) {
	s, err := New[Float4](0, 1, "empty")
	if err != nil {
		t.Fatalf("Failed to create zero-length stream: %v", err)
	}
	if s.Stride() != 0 {
		t.Errorf("Zero-length stream has stride %d, want 0", s.Stride())
	}
	if err := s.Upload(); err != nil {
		t.Errorf("Upload of empty stream failed: %v", err)
	}
	if err := s.Download(); err != nil {
		t.Errorf("Download of empty stream failed: %v", err)
	}
	if err := s.Deallocate(); err != nil {
		t.Errorf("Deallocate of empty stream failed: %v", err)
	}
}

// Test that deallocation clears all owned state
func TestDeallocateClearsState(t *testing.T) {
	s, err := New[float32](64, 2, "dealloc")
	if err != nil {
		t.Fatalf("Failed to create stream: %v", err)
	}
	if err := s.Deallocate(); err != nil {
		t.Fatalf("Deallocate failed: %v", err)
	}
	if s.Data() != nil {
		t.Error("Host data not cleared by Deallocate")
	}
	if !s.DeviceData().IsNil() {
		t.Error("Device pointer not cleared by Deallocate")
	}
}
