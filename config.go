// Package openmm configuration constants
package openmm

// Stream layout parameters
const (
	// StrideAlignment is the element alignment every substream stride is
	// rounded up to. Device kernels assume substreams start on these
	// boundaries, so it must not change independently of them.
	StrideAlignment = 16

	// MemoryAlignment is the byte alignment for device allocations
	MemoryAlignment = 64
)

// Fallback when the platform memory probe is unavailable
const defaultSystemMemory = 16 * 1024 * 1024 * 1024 // 16GB

// Warp/tile geometry
const (
	// Grid is the interaction tile width in atoms
	Grid = 32

	// GridBits is log2(Grid)
	GridBits = 5
)

// Per-architecture thread sizing hints consumed by the kernel launch code.
// The two columns correspond to the first-generation (G8x) and
// second-generation (GT2xx) device targets the engine was tuned on.
const (
	G8XNonbondThreadsPerBlock       = 256
	GT2XXNonbondThreadsPerBlock     = 320
	G8XBornForceThreadsPerBlock     = 256
	GT2XXBornForceThreadsPerBlock   = 320
	G8XShakeThreadsPerBlock         = 128
	GT2XXShakeThreadsPerBlock       = 256
	G8XUpdateThreadsPerBlock        = 192
	GT2XXUpdateThreadsPerBlock      = 384
	G8XLocalForcesThreadsPerBlock   = 192
	GT2XXLocalForcesThreadsPerBlock = 384
	G8XThreadsPerBlock              = 256
	GT2XXThreadsPerBlock            = 256
	G8XRandomThreadsPerBlock        = 256
	GT2XXRandomThreadsPerBlock      = 384
	G8XNonbondWorkUnitsPerSM        = 220
	GT2XXNonbondWorkUnitsPerSM      = 256
)
