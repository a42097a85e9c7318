//go:build unix

package platform

import "golang.org/x/sys/unix"

func isAdmin() bool {
	return unix.Geteuid() == 0
}
