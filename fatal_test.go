package openmm

import (
	"strings"
	"testing"
)

// failingAllocator simulates device memory exhaustion.
type failingAllocator struct{}

func (failingAllocator) Allocate(size int) (DevicePtr, error) {
	return DevicePtr{}, ErrOutOfMemory
}

func (failingAllocator) Free(ptr DevicePtr) error {
	return nil
}

// Test that allocation failure surfaces as an allocation error naming the stream
func TestAllocationFailure(t *testing.T) {
	ctx := newContextWith(failingAllocator{})

	s, err := NewStream[Float4](ctx, 100, 1, "posq")
	if err == nil {
		t.Fatal("Expected allocation failure, got a usable stream")
	}
	if s != nil {
		t.Error("Expected nil stream on allocation failure")
	}
	if !IsAllocationError(err) {
		t.Errorf("Expected allocation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "posq") {
		t.Errorf("Diagnostic does not name the stream: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "Allocate") {
		t.Errorf("Diagnostic does not name the operation: %q", err.Error())
	}
}

// Test that Check terminates the process on error with a non-zero status
func TestCheckTerminates(t *testing.T) {
	exitCode := -1
	oldExit := exit
	exit = func(code int) { exitCode = code }
	defer func() { exit = oldExit }()

	Check(nil)
	if exitCode != -1 {
		t.Fatal("Check(nil) must not terminate")
	}

	ctx := newContextWith(failingAllocator{})
	_, err := NewStream[float32](ctx, 16, 1, "velm")
	Check(err)
	if exitCode != 1 {
		t.Fatalf("Check on allocation failure exited with %d, want 1", exitCode)
	}
}
