// Package openmm provides the dual-residency stream buffers that back the
// structure-of-arrays layout of a molecular simulation engine.
//
// A Stream is a typed array that exists simultaneously in host memory and in a
// separate accelerator memory space, with explicit, caller-controlled transfer
// between the two copies. Every per-atom, per-bond and per-constraint quantity
// the engine works with is stored as one Stream instance, padded to a stride
// that keeps device-side addressing uniform across substreams.
//
// Example usage:
//
//	posq := openmm.MustNew[openmm.Float4](numAtoms, 1, "posq")
//	defer posq.Deallocate()
//
//	for i := 0; i < numAtoms; i++ {
//		*posq.At(i) = openmm.Float4{X: x[i], Y: y[i], Z: z[i], W: q[i]}
//	}
//	openmm.Check(posq.Upload())
//
//	// ... device kernels run against posq.DeviceData() ...
//
//	openmm.Check(posq.Download())
//
// The host and device copies are never synchronized implicitly: they diverge on
// any host write or device kernel execution, and it is the caller's job to call
// Upload or Download at the right points. Transfers always move the whole
// buffer; there is no partial-transfer primitive.
package openmm
