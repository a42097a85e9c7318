// Package paths resolves the per-user directories pyvm reads and writes.
//
// It wraps github.com/adrg/xdg, so the config file lives under
// $XDG_CONFIG_HOME/pyvm and downloaded installers under
// $XDG_CACHE_HOME/pyvm/downloads, with the platform equivalents on macOS
// and Windows.
package paths
