package version

import "fmt"

// Set at build time with -ldflags "-X github.com/prismanotify/prismanotify/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

// GetCommit returns the commit hash
func GetCommit() string {
	return Commit
}

// UserAgent is sent on every Prisma Cloud API request.
func UserAgent() string {
	return "prismanotify/" + Version
}

// String formats the full build identity for --version.
func String() string {
	return fmt.Sprintf("prismanotify %s (commit %s, built %s)", Version, Commit, BuildDate)
}
