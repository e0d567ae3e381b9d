package cli

import "fmt"

// Overridden at link time, for example
// -ldflags "-X github.com/felixgeelhaar/covtable/internal/cli.Version=1.0.0".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func versionLine() string {
	return fmt.Sprintf("covtable %s (commit %s, built %s)", Version, Commit, Date)
}
