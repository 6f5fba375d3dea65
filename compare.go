// Package openmm tolerance-based comparison of stream contents
package openmm

import (
	"fmt"
	"math"
)

// FloatElement restricts comparison to streams of floating-point scalars.
type FloatElement interface {
	~float32 | ~float64
}

// StreamVerification reports the divergence between two streams.
type StreamVerification struct {
	MaxDiff       float64 // Largest absolute difference found
	MaxIndex      int     // Flat live index of the largest difference
	FirstMismatch int     // Flat live index of the first element outside tolerance, -1 if none
	NumMismatches int     // Elements outside tolerance
	TotalItems    int     // Elements compared
}

// IsAcceptable returns true if no element diverged beyond the tolerance.
func (r StreamVerification) IsAcceptable() bool {
	return r.NumMismatches == 0
}

// String formats the verification result for display
func (r StreamVerification) String() string {
	if r.NumMismatches == 0 {
		return fmt.Sprintf("PASS: %d values match within tolerance (max diff %e)",
			r.TotalItems, r.MaxDiff)
	}
	return fmt.Sprintf("FAIL: %d/%d values differ\n"+
		"  Max difference: %e at index %d\n"+
		"  First mismatch at index: %d",
		r.NumMismatches, r.TotalItems, r.MaxDiff, r.MaxIndex, r.FirstMismatch)
}

// CompareStreams compares two streams elementwise over their live elements
// and returns the maximum absolute difference found. maxIndex limits the
// comparison to the first maxIndex elements of each substream; 0 compares the
// full live length. Used for validating kernel output against references, not
// on the runtime path.
func CompareStreams[T FloatElement](a, b *Stream[T], tolerance float64, maxIndex int) float64 {
	return VerifyStreams(a, b, tolerance, maxIndex).MaxDiff
}

// VerifyStreams is CompareStreams with a full divergence report.
func VerifyStreams[T FloatElement](a, b *Stream[T], tolerance float64, maxIndex int) StreamVerification {
	result := StreamVerification{FirstMismatch: -1}

	length := a.Len()
	if b.Len() < length {
		length = b.Len()
	}
	if maxIndex > 0 && maxIndex < length {
		length = maxIndex
	}
	subStreams := a.SubStreams()
	if b.SubStreams() < subStreams {
		subStreams = b.SubStreams()
	}

	flat := 0
	for j := 0; j < subStreams; j++ {
		av, bv := a.Sub(j), b.Sub(j)
		for i := 0; i < length; i++ {
			diff := math.Abs(float64(av[i]) - float64(bv[i]))
			if diff > result.MaxDiff {
				result.MaxDiff = diff
				result.MaxIndex = flat
			}
			if diff > tolerance {
				result.NumMismatches++
				if result.FirstMismatch == -1 {
					result.FirstMismatch = flat
				}
			}
			flat++
			result.TotalItems++
		}
	}
	return result
}
