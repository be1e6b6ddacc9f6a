// Package commands implements termchatd's CLI surface.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	port      string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:           "termchatd",
	Short:         "termchatd runs a termchat broadcast server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&port, "port", "p", "8080", "TCP port to listen on")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text, json")
}
