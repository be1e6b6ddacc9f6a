// Command termchatd runs the termchat broadcast server.
package main

import (
	"fmt"
	"os"

	"github.com/Aca-S/termchat/cmd/termchatd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
