package openmm

import (
	"testing"
)

// Test that the aggregate wires every stream and derives the padded atom count
func TestNewSimulationData(t *testing.T) {
	sim := NewSimulationData(SimulationSizes{
		Atoms:            1003,
		Bonds:            950,
		Angles:           420,
		Dihedrals:        0,
		ShakeConstraints: 600,
		Randoms:          4096,
		OutputBuffers:    48,
	})
	defer sim.Release()

	if sim.PaddedAtoms != 1008 {
		t.Errorf("Padded atom count is %d, want 1008", sim.PaddedAtoms)
	}
	if sim.Force.SubStreams() != 48 {
		t.Errorf("Force stream has %d output buffers, want 48", sim.Force.SubStreams())
	}
	if sim.Random4.SubStreams() != 2 {
		t.Errorf("Random pool has %d substreams, want 2", sim.Random4.SubStreams())
	}
	if sim.DihedralID.Len() != 0 {
		t.Errorf("Empty dihedral table has length %d", sim.DihedralID.Len())
	}
	if sim.Posq.DeviceData().IsNil() {
		t.Error("Position stream has no device allocation")
	}
}

// Test bulk transfer across the whole aggregate
func TestSimulationBulkTransfer(t *testing.T) {
	sim := NewSimulationData(SimulationSizes{
		Atoms:   100,
		Bonds:   99,
		Randoms: 128,
	})
	defer sim.Release()

	for i := 0; i < sim.Atoms; i++ {
		*sim.Posq.At(i) = Float4{X: float32(i), W: -1}
	}
	if err := sim.UploadAll(); err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}

	// Wipe the host copies and restore everything from the device.
	for i := range sim.Posq.Data() {
		sim.Posq.Data()[i] = Float4{}
	}
	if err := sim.DownloadAll(); err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	for i := 0; i < sim.Atoms; i++ {
		got := *sim.Posq.At(i)
		if got.X != float32(i) || got.W != -1 {
			t.Fatalf("Atom %d corrupted after bulk transfer: %+v", i, got)
		}
	}
}

// Test that Release deallocates every stream exactly once
func TestSimulationRelease(t *testing.T) {
	sim := NewSimulationData(SimulationSizes{Atoms: 10})
	if err := sim.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if sim.Posq.Data() != nil {
		t.Error("Release did not clear stream host data")
	}
}
