// Command semgate is the semantic-cache chat gateway CLI.
package main

import (
	"os"

	"github.com/custodia-labs/semgate/internal/adapters/driving/cli"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
