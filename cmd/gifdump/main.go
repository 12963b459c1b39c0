// Command gifdump inspects and renders animated GIF files from the command
// line: stream metadata, per-frame timing, and single-frame PNG export.
package main

import (
	"fmt"
	"os"

	"github.com/deepteams/gifcore/cmd/gifdump/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
