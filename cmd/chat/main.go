// Package main is an interactive terminal client for the chat widget.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/config"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/widget"
	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	w, err := widget.New(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start widget: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()

	// Ctrl-C aborts the in-flight send instead of killing the session.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for range sigs {
			w.Abort()
			fmt.Println("\n(aborted)")
		}
	}()

	if err := w.SetMode(widget.ModeChat); err != nil {
		fmt.Fprintf(os.Stderr, "failed to open chat: %v\n", err)
		os.Exit(1)
	}

	printTranscript(w.Messages())
	fmt.Println(`Type a message, or /help for commands.`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := runCommand(w, line); quit {
				break
			}
			continue
		}

		before := len(w.Messages())
		if err := w.Send(context.Background(), line); err != nil {
			switch {
			case errors.Is(err, widget.ErrQuotaExhausted):
				fmt.Println("Message quota exhausted. Sign in or wait for the window to reset.")
			case errors.Is(err, widget.ErrInputTooLong):
				fmt.Printf("Message too long (max %d characters).\n", cfg.MaxInputLength)
			default:
				fmt.Printf("Could not send: %v\n", err)
			}
			continue
		}
		printTranscript(w.Messages()[before:])
	}

	fmt.Println("bye")
}

func runCommand(w *widget.Widget, line string) (quit bool) {
	ctx := context.Background()
	fields := strings.Fields(line)

	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Println(`/new       start a fresh session
/retry     resend the last failed message
/quota     show remaining message quota
/save      persist the transcript to the backend
/load      restore the persisted transcript
/clear     delete the persisted transcript
/search Q  search properties for @mentions
/quit      exit`)

	case "/new":
		id, err := w.NewSession()
		if err != nil {
			fmt.Printf("Could not reset session: %v\n", err)
			return false
		}
		fmt.Printf("New session %s\n", id)
		printTranscript(w.Messages())

	case "/retry":
		before := len(w.Messages())
		if err := w.Retry(ctx); err != nil {
			fmt.Printf("Retry failed: %v\n", err)
			return false
		}
		printTranscript(w.Messages()[before:])

	case "/quota":
		info := w.RefreshQuota(ctx)
		if info.Role.Unlimited() {
			fmt.Println("Quota: unlimited")
			return false
		}
		fmt.Printf("Quota: %d of %d remaining (%s tier)\n", info.Remaining, info.Limit, info.Role)

	case "/save":
		name := strings.TrimSpace(strings.TrimPrefix(line, "/save"))
		if err := w.SaveHistory(ctx, name); err != nil {
			fmt.Printf("Save failed: %v\n", err)
			return false
		}
		fmt.Println("Transcript saved.")

	case "/load":
		if err := w.LoadHistory(ctx); err != nil {
			fmt.Printf("Load failed: %v\n", err)
			return false
		}
		printTranscript(w.Messages())

	case "/clear":
		if err := w.ClearHistory(ctx); err != nil {
			fmt.Printf("Clear failed: %v\n", err)
			return false
		}
		fmt.Println("Transcript cleared.")
		printTranscript(w.Messages())

	case "/search":
		query := strings.TrimSpace(strings.TrimPrefix(line, "/search"))
		props, err := w.SearchProperties(ctx, query)
		if err != nil {
			fmt.Printf("Search failed: %v\n", err)
			return false
		}
		for _, p := range props {
			fmt.Printf("  @%s  %s  %s\n", p.ID, p.Title, p.Address)
		}
		if len(props) == 0 {
			fmt.Println("  no matches")
		}

	default:
		fmt.Printf("Unknown command %s (try /help)\n", fields[0])
	}
	return false
}

func printTranscript(msgs []model.Message) {
	for _, m := range msgs {
		label := "assistant"
		if m.Role == model.RoleUser {
			label = "you"
		}
		switch {
		case m.Restricted:
			fmt.Printf("[%s] %s (%s)\n", label, m.Content, m.RestrictedCategory)
		case m.Error:
			fmt.Printf("[%s] error: %s (use /retry)\n", label, m.Content)
		default:
			fmt.Printf("[%s] %s\n", label, m.Content)
		}
	}
}
