// Command punybuf is the CLI entry point: see cmd/punybuf/cmd for the flag
// surface (spec §6).
package main

import (
	"os"

	"github.com/whzard/punybuf/cmd/punybuf/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
