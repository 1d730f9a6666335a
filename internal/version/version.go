// Package version holds build metadata injected with -ldflags -X.
package version

import "fmt"

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown" // UTC, RFC 3339
)

// String returns the one-line version banner printed by -version.
func String(program string) string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", program, Version, GitCommit, BuildTime)
}
