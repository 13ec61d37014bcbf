// Package workers sizes worker pools. GOMAXPROCS is used instead of
// runtime.NumCPU because it tracks the cgroup CPU limit in containers.
package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns a pool size scaled from the available CPUs. multiplier
// adjusts for the workload (1.0 CPU-bound, 2.0 I/O-bound); limit caps
// the result, 0 meaning uncapped. The VERIFY_WORKERS environment
// variable overrides the computed size.
func Count(multiplier float64, limit int) int {
	n := fromEnv()
	if n == 0 {
		n = int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	}
	if n < 1 {
		n = 1
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n
}

// ForIO sizes a pool for I/O-bound work, two workers per CPU.
func ForIO(limit int) int {
	return Count(2.0, limit)
}

func fromEnv() int {
	raw := os.Getenv("VERIFY_WORKERS")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0
	}
	return n
}
