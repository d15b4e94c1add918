// Package buildinfo exposes the version stamped into the binaries at link
// time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/snip/internal/buildinfo.buildVersion=v1.2.0"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

// Version returns a one-line description of the build.
func Version() string {
	return fmt.Sprintf("%s (built %s, commit %s)", buildVersion, buildDate, buildCommit)
}

// PrintBuildData writes the build fields, one per line.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", buildVersion)
	fmt.Fprintf(w, "Build date: %s\n", buildDate)
	fmt.Fprintf(w, "Build commit: %s\n", buildCommit)
}
