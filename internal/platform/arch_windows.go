//go:build windows

package platform

import (
	"os"
	"runtime"

	"golang.org/x/sys/windows"
)

// hostArch reports the machine architecture, which differs from GOARCH when
// an amd64 build runs under emulation on ARM64.
func hostArch() string {
	var process, native uint16
	if err := windows.IsWow64Process2(windows.CurrentProcess(), &process, &native); err == nil {
		if arch, ok := archFromMachine(native); ok {
			return arch
		}
	}
	if arch, ok := archFromEnv(os.Getenv); ok {
		return arch
	}
	return runtime.GOARCH
}
