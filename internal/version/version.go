// Package version holds build version information for sarifsort.
package version

// Overridden at build time:
// go build -ldflags "-X sarifsort/internal/version.Version=1.0.0 -X sarifsort/internal/version.Commit=abc123"
var (
	// Version is the semantic version of sarifsort
	Version = "0.4.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// Info returns the version with a short commit suffix when known.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns complete version information
func Full() string {
	return "sarifsort version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}

// ToolVersion is the version recorded in automationDetails of logs written
// by sarifsort.
func ToolVersion() string {
	return "sarifsort/" + Version
}
