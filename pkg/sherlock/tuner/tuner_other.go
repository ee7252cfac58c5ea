//go:build !darwin && !linux

package tuner

import "runtime"

// assumedMemory stands in where the platform offers no memory probe.
const assumedMemory int64 = 8 << 30

// Detect reports the core count and a fixed memory guess.
func Detect() (Resources, error) {
	return Resources{
		Cores:       runtime.NumCPU(),
		TotalMemory: assumedMemory,
		FreeMemory:  assumedMemory / 2,
	}, nil
}
