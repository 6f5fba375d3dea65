package openmm

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"
)

// hostFeatures tracks the instruction set extensions relevant to how the
// simulated device moves stream data around.
type hostFeatures struct {
	HasSSE4   bool
	HasAVX    bool
	HasAVX2   bool
	HasAVX512 bool
	HasFMA    bool
	HasNEON   bool
}

// Populated during package variable initialization so the default device,
// built in an init function, sees the detected values.
var features = detectFeatures()

func detectFeatures() hostFeatures {
	return hostFeatures{
		HasSSE4:   cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX:    cpu.X86.HasAVX,
		HasAVX2:   cpu.X86.HasAVX2,
		HasAVX512: cpu.X86.HasAVX512F,
		HasFMA:    cpu.X86.HasFMA,
		HasNEON:   cpu.ARM64.HasASIMD,
	}
}

// simdLevel returns the widest vector extension available on the host.
func simdLevel() string {
	switch {
	case features.HasAVX512:
		return "AVX512"
	case features.HasAVX2 && features.HasFMA:
		return "AVX2"
	case features.HasAVX:
		return "AVX"
	case features.HasSSE4:
		return "SSE4"
	case features.HasNEON:
		return "NEON"
	default:
		return "scalar"
	}
}

// deviceName builds the display name for the simulated device.
func deviceName() string {
	return fmt.Sprintf("CPU (%s/%s, %s)", runtime.GOOS, runtime.GOARCH, simdLevel())
}
