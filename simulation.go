package openmm

// NonbondedMethod selects how nonbonded interactions are truncated.
type NonbondedMethod int

const (
	NoCutoff NonbondedMethod = iota
	Cutoff
	Periodic
	Ewald
)

// SimulationSizes carries the table sizes the setup code derived from the
// molecular topology. Zero counts are valid; the corresponding streams are
// still allocated (with empty live regions) so kernels can bind them
// unconditionally.
type SimulationSizes struct {
	Atoms            int
	Bonds            int
	Angles           int
	Dihedrals        int
	ShakeConstraints int
	Randoms          int
	OutputBuffers    int // force accumulation buffers, one substream each
}

// SimulationData aggregates every stream and scalar constant the device
// kernels consume. It is a plain record: it owns its streams but performs no
// numerics itself. Every device pointer a kernel sees is the substream-0 view
// of one of these streams.
type SimulationData struct {
	// Constants
	Atoms           int     // Number of atoms
	PaddedAtoms     int     // Atom count padded to the stream stride
	ThreadsPerBlock int     // Threads per block to launch
	DeltaT          float32 // Integration timestep
	Epsfac          float32 // Epsilon factor for electrostatics
	CutoffSqr       float32 // Squared nonbonded cutoff distance
	PeriodicBoxX    float32 // Periodic box X dimension
	PeriodicBoxY    float32 // Periodic box Y dimension
	PeriodicBoxZ    float32 // Periodic box Z dimension
	Method          NonbondedMethod

	// Per-atom state
	Posq  *Stream[Float4]  // Positions and charges
	Velm  *Stream[Float4]  // Velocities and inverse masses
	Force *Stream[Float4]  // Force accumulators, one substream per output buffer
	Attr  *Stream[Float2]  // Additional atom attributes (sigma, epsilon)
	Born  *Stream[float32] // Born radii
	BornF *Stream[float32] // Born force accumulators

	// Bonded-term tables
	BondID            *Stream[Int4]   // Bond atoms and output buffer IDs
	BondParameter     *Stream[Float2] // Bond length and force constant
	AngleID           *Stream[Int4]   // Angle atoms and first output buffer IDs
	AngleParameter    *Stream[Float2]
	DihedralID        *Stream[Int4]
	DihedralParameter *Stream[Float4]

	// Constraint tables
	ShakeID        *Stream[Int4]   // Constrained atoms and phase
	ShakeParameter *Stream[Float4] // Reduced masses and distances

	// Random number pools
	RandomSeed *Stream[UInt4]
	Random4    *Stream[Float4]

	objects []DeviceObject
}

// NewSimulationData allocates every stream the kernels need. Allocation
// failure terminates the process, matching the engine's policy that a
// partially allocated simulation is unusable.
func NewSimulationData(sizes SimulationSizes) *SimulationData {
	outputBuffers := sizes.OutputBuffers
	if outputBuffers < 1 {
		outputBuffers = 1
	}

	sim := &SimulationData{
		Atoms:           sizes.Atoms,
		ThreadsPerBlock: G8XThreadsPerBlock,
		Method:          NoCutoff,
	}

	sim.Posq = track(sim, MustNew[Float4](sizes.Atoms, 1, "posq"))
	sim.Velm = track(sim, MustNew[Float4](sizes.Atoms, 1, "velm"))
	sim.Force = track(sim, MustNew[Float4](sizes.Atoms, outputBuffers, "force"))
	sim.Attr = track(sim, MustNew[Float2](sizes.Atoms, 1, "attr"))
	sim.Born = track(sim, MustNew[float32](sizes.Atoms, 1, "bornRadii"))
	sim.BornF = track(sim, MustNew[float32](sizes.Atoms, outputBuffers, "bornForce"))

	sim.BondID = track(sim, MustNew[Int4](sizes.Bonds, 1, "bondID"))
	sim.BondParameter = track(sim, MustNew[Float2](sizes.Bonds, 1, "bondParameter"))
	sim.AngleID = track(sim, MustNew[Int4](sizes.Angles, 1, "angleID"))
	sim.AngleParameter = track(sim, MustNew[Float2](sizes.Angles, 1, "angleParameter"))
	sim.DihedralID = track(sim, MustNew[Int4](sizes.Dihedrals, 1, "dihedralID"))
	sim.DihedralParameter = track(sim, MustNew[Float4](sizes.Dihedrals, 1, "dihedralParameter"))

	sim.ShakeID = track(sim, MustNew[Int4](sizes.ShakeConstraints, 1, "shakeID"))
	sim.ShakeParameter = track(sim, MustNew[Float4](sizes.ShakeConstraints, 1, "shakeParameter"))

	sim.RandomSeed = track(sim, MustNew[UInt4](sizes.Randoms, 1, "randomSeed"))
	sim.Random4 = track(sim, MustNew[Float4](sizes.Randoms, 2, "random4"))

	// Kernels iterate atoms in stride-sized chunks, so the padded count is
	// the launch bound, not the raw atom count.
	sim.PaddedAtoms = sim.Posq.Stride()

	return sim
}

// track registers a stream for the bulk transfer and release operations.
func track[T Element](sim *SimulationData, s *Stream[T]) *Stream[T] {
	sim.objects = append(sim.objects, s)
	return s
}

// UploadAll pushes every stream's host copy to the device.
func (sim *SimulationData) UploadAll() error {
	for _, obj := range sim.objects {
		if err := obj.Upload(); err != nil {
			return err
		}
	}
	return nil
}

// DownloadAll pulls every stream's device copy back to the host.
func (sim *SimulationData) DownloadAll() error {
	for _, obj := range sim.objects {
		if err := obj.Download(); err != nil {
			return err
		}
	}
	return nil
}

// Release deallocates every stream. The record must not be used afterwards.
func (sim *SimulationData) Release() error {
	var first error
	for _, obj := range sim.objects {
		if err := obj.Deallocate(); err != nil && first == nil {
			first = err
		}
	}
	sim.objects = nil
	return first
}
