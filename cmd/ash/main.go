// Command ash records shell history into SQLite and queries it.
package main

import (
	"os"

	"github.com/roach88/ash/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
