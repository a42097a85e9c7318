// Package cmd contains build-time variables injected via ldflags:
//
//	go build -ldflags "-X github.com/thoreinstein/pyvm/cmd.Version=1.2.0" ./cmd/pyvm
package cmd

// Build-time variables set via ldflags.
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)

// UserAgent identifies pyvm in HTTP requests to python.org.
func UserAgent() string {
	return "pyvm/" + Version
}
