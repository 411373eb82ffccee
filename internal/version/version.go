// Package version exposes build metadata for the chooserbench binary,
// stamped via -ldflags at release time.
package version

var (
	// Version is the semantic version of the chooserbench binary.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "unknown"
	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)
