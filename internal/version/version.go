// Package version carries the build identity stamped in at release
// time. A plain `go build` leaves the dev defaults in place; release
// builds overwrite them:
//
//	go build -ldflags "\
//	  -X github.com/pilumvli199/DT6/internal/version.Version=1.0.0 \
//	  -X github.com/pilumvli199/DT6/internal/version.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/pilumvli199/DT6/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import "fmt"

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String renders the identity for the -version flag.
func String() string {
	return fmt.Sprintf("%s (%s) built %s", Version, Commit, BuildTime)
}
