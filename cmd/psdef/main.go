// psdef is a PowerShell function definition inspector.
// Single binary, no configuration: parse, report, optionally cache and watch.
package main

import (
	"os"

	"github.com/corey/psdef/cmd/psdef/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if code := cmd.ExitCode(err); code >= 0 {
			os.Exit(code)
		}
		os.Exit(1)
	}
}
