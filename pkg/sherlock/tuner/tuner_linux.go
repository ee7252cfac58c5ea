//go:build linux

package tuner

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect reads memory figures from sysinfo(2). Buffers are reclaimable and
// count as free.
func Detect() (Resources, error) {
	res := Resources{Cores: runtime.NumCPU()}

	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return res, fmt.Errorf("sysinfo: %w", err)
	}

	unit := max(uint64(si.Unit), 1)
	res.TotalMemory = int64(uint64(si.Totalram) * unit)
	res.FreeMemory = min(int64((uint64(si.Freeram)+uint64(si.Bufferram))*unit), res.TotalMemory)
	return res, nil
}
