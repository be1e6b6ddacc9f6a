// Package commands implements termchat-client's CLI surface.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	addr     string
	nick     string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "termchat-client",
	Short:         "termchat-client is a minimal reference client for termchat",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConnect,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&addr, "addr", "a", "localhost:8080", "server address")
	rootCmd.PersistentFlags().StringVarP(&nick, "nick", "n", "CLIENT", "initial nickname")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
}
