// Package version exposes build metadata stamped via -ldflags.
package version

var (
	// Version is the release version, "dev" for untagged builds.
	Version = "dev"
	// Commit is the git commit hash the binary was built from.
	Commit = "unknown"
	// Date is the build timestamp.
	Date = "unknown"
)
