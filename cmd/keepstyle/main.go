// Command keepstyle populates report templates and restores workbook formatting.
package main

import (
	"os"

	"github.com/javajack/keepstyle/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
