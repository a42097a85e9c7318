//go:build darwin

package platform

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// hostArch reports arm64 for an amd64 build translated by Rosetta.
func hostArch() string {
	if runtime.GOARCH == "amd64" {
		if translated, err := unix.SysctlUint32("sysctl.proc_translated"); err == nil && translated == 1 {
			return "arm64"
		}
	}
	return runtime.GOARCH
}
