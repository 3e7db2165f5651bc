package mdmath

import "runtime"

// Worker sizing constants.
const (
	// MinWorkers ensures at least one worker is available.
	MinWorkers = 1

	// MaxWorkers caps concurrent file conversions. Conversion is CPU bound
	// and each worker holds one whole document in memory.
	MaxWorkers = 16
)

// ResolveWorkers determines the batch worker count.
// Priority: explicit workers > GOMAXPROCS (adjusted by automaxprocs for
// containers). The result is clamped to [MinWorkers, MaxWorkers].
func ResolveWorkers(workers int) int {
	n := workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}

	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}
