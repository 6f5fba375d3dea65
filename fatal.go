package openmm

import (
	"fmt"
	"os"
)

// exit is swapped out by tests that exercise the fatal path.
var exit = os.Exit

// Check is the fail-loud boundary for stream errors. A simulation cannot
// continue after a memory-management failure, so allocation, transfer and
// deallocation errors are reported and the process terminates with a non-zero
// status. Callers that want to handle an error differently simply do not
// route it through Check.
func Check(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	exit(1)
}
