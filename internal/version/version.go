// Package version exposes build version information.
package version

// Set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the full version string.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
