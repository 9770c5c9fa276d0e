// Command restosync syncs restaurant records from a remote feed into a
// local cache and browses them by neighborhood and cuisine.
package main

import (
	"os"

	"github.com/roach88/restosync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
