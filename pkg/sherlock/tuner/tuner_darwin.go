//go:build darwin

package tuner

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect reads hw.memsize. Darwin has no cheap free-memory figure short of
// parsing vm_stat, so half of physical memory stands in for it.
func Detect() (Resources, error) {
	res := Resources{Cores: runtime.NumCPU()}

	memsize, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return res, fmt.Errorf("sysctl hw.memsize: %w", err)
	}
	res.TotalMemory = int64(memsize)
	res.FreeMemory = res.TotalMemory / 2
	return res, nil
}
