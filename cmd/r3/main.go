// r3 - command-line client for the remote.it API.
package main

import (
	"os"

	"github.com/remoteit/remoteit-go/internal/cli"
	"github.com/remoteit/remoteit-go/internal/version"
)

// Version information, set with -ldflags at release time.
var (
	Version   = "v0.1.0-dev"
	BuildTime = "unknown"
)

func main() {
	// version is the canonical source for all packages
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
