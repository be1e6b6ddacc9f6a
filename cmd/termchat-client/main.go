// Command termchat-client is a minimal, non-interactive-UI reference
// client for termchat: a stdin-driven loop that recognizes /nick and
// /msg commands and prints inbound chat as timestamped lines.
package main

import (
	"fmt"
	"os"

	"github.com/Aca-S/termchat/cmd/termchat-client/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
