package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aca-S/termchat/internal/logging"
	"github.com/Aca-S/termchat/session"
)

func runConnect(cmd *cobra.Command, args []string) error {
	log := logging.New(logging.Config{Level: logLevel})

	sess, err := session.Dial(addr, nick)
	if err != nil {
		return fmt.Errorf("termchat-client: %w", err)
	}
	defer sess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx, ui{}) }()

	scanner := bufio.NewScanner(os.Stdin)
	go func() {
		for scanner.Scan() {
			handleLine(sess, scanner.Text())
		}
		cancel()
	}()

	err = <-done
	if err != nil && err != context.Canceled {
		log.Error("connection ended", "error", err)
		return err
	}
	return nil
}

// handleLine interprets one line of stdin input: /nick <name> changes
// the nickname, /msg <target> <text> sends a private message, anything
// else is broadcast as regular chat (spec §4.6, §1 reference client).
func handleLine(sess *session.Session, line string) {
	switch {
	case strings.HasPrefix(line, "/nick "):
		newName := strings.TrimSpace(strings.TrimPrefix(line, "/nick "))
		if newName != "" {
			_ = sess.SendNick(newName)
		}
	case strings.HasPrefix(line, "/msg "):
		rest := strings.TrimPrefix(line, "/msg ")
		target, text, ok := strings.Cut(rest, " ")
		if ok {
			_ = sess.SendPrivate(target, text)
		}
	case line == "":
		// ignore blank lines
	default:
		_ = sess.SendChat(line)
	}
}

// ui implements session.Callbacks, printing each event as a
// "[HH:MM] name: text" line (spec §1: a minimal non-TUI reference client).
type ui struct{}

func timestamp() string { return time.Now().Format("15:04") }

func (ui) OnChat(from, text string) {
	fmt.Printf("[%s] %s: %s\n", timestamp(), from, text)
}

func (ui) OnPrivate(from, text string) {
	fmt.Printf("[%s] (private) %s: %s\n", timestamp(), from, text)
}

func (ui) OnPrivateResult(ok bool, nameOrTarget, text string) {
	if ok {
		fmt.Printf("[%s] (private to %s) %s\n", timestamp(), nameOrTarget, text)
	} else {
		fmt.Printf("[%s] no such user: %s\n", timestamp(), nameOrTarget)
	}
}

func (ui) OnJoin(name string) {
	fmt.Printf("[%s] *** %s joined ***\n", timestamp(), name)
}

func (ui) OnLeave(name string) {
	fmt.Printf("[%s] *** %s left ***\n", timestamp(), name)
}

func (ui) OnNickResult(ok bool, newName string) {
	if ok {
		fmt.Printf("[%s] *** you are now known as %s ***\n", timestamp(), newName)
	} else {
		fmt.Printf("[%s] *** nickname change failed ***\n", timestamp())
	}
}

func (ui) OnNickChange(oldName, newName string) {
	fmt.Printf("[%s] *** %s is now known as %s ***\n", timestamp(), oldName, newName)
}
