//go:build !windows && !darwin

package platform

import "runtime"

func hostArch() string {
	return runtime.GOARCH
}
