//go:build !unix && !windows

package platform

func isAdmin() bool {
	return false
}
