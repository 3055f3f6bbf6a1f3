// Package version holds build metadata stamped in with -ldflags "-X".
package version

import "fmt"

const product = "legacylift"

var (
	Version   = "0.1.0"
	Commit    = "dev"
	BuildDate = "unknown"
)

// Full is the line printed by `legacylift version`.
func Full() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", product, Version, Commit, BuildDate)
}

// UserAgent identifies outbound AI gateway requests.
func UserAgent() string {
	return product + "/" + Version
}
