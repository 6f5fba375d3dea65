// Package openmm fixed-size element types for stream buffers
package openmm

// The vector value types mirror the CUDA built-in vector types used by the
// simulation's SoA tables. They are plain value structs so that streams of
// them relocate with flat byte-for-byte copies.

// Float2 is a pair of float32 components (e.g. sigma/epsilon atom attributes).
type Float2 struct {
	X, Y float32
}

// Float3 is a triple of float32 components (e.g. a displacement vector).
type Float3 struct {
	X, Y, Z float32
}

// Float4 is a quadruple of float32 components (e.g. position + charge,
// velocity + inverse mass, force accumulators).
type Float4 struct {
	X, Y, Z, W float32
}

// Int2 is a pair of int32 components (e.g. constraint atom pairs).
type Int2 struct {
	X, Y int32
}

// Int4 is a quadruple of int32 components (e.g. bond atom and output buffer IDs).
type Int4 struct {
	X, Y, Z, W int32
}

// UInt4 is a quadruple of uint32 components (e.g. random number generator seeds).
type UInt4 struct {
	X, Y, Z, W uint32
}

// Element restricts stream buffers to fixed-size, trivially copyable values.
// Both the transfer operations and the collapse algorithm rely on elements
// relocating as flat bytes, so only scalars and the small fixed-size tuples
// above are admitted.
type Element interface {
	~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64 |
		Float2 | Float3 | Float4 | Int2 | Int4 | UInt4
}
