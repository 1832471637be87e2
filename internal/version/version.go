// Package version provides build-time version information.
package version

import "fmt"

// Set at build time:
//
//	go build -ldflags "-X thrift-matcher/internal/version.Version=1.2.0"
var (
	// Version is the semantic version
	Version = "1.0.0"

	// BuildTime is the UTC time when the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// Info is the JSON form reported by the service root.
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit}
}

// String formats the version for CLI banners.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
