// Command thicket resolves Maven-style dependency graphs.
package main

import (
	"os"

	"github.com/thicketlab/thicket/internal/cli"
	"github.com/thicketlab/thicket/pkg/buildinfo"
)

func main() {
	cli.SetVersion(buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
