//go:build linux

package device

import "golang.org/x/sys/unix"

func totalMemoryGB() float64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	totalBytes := uint64(info.Totalram) * uint64(info.Unit)
	return float64(totalBytes) / (1024 * 1024 * 1024)
}
