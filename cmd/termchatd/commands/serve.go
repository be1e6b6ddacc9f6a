package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aca-S/termchat/internal/logging"
	"github.com/Aca-S/termchat/roster"
)

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.New(logging.Config{Level: logLevel, Format: logFormat})

	if len(args) > 0 {
		port = args[0]
	}

	srv, err := roster.New(port, roster.WithLogger(log))
	if err != nil {
		return fmt.Errorf("termchatd: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	log.Info("termchatd listening", "port", port)
	err = srv.Run(ctx)
	if err != nil && err != context.Canceled {
		return fmt.Errorf("termchatd: %w", err)
	}
	log.Info("termchatd stopped")
	return nil
}
