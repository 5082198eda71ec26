package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lithammer/shortuuid/v4"
	"github.com/spf13/cobra"

	"github.com/hrygo/acutie/plugin/ai/session"
)

func newChatCmd() *cobra.Command {
	var (
		sessionID   string
		metricsAddr string
		showStats   bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive triage session on stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := loadProfile()
			if err != nil {
				return err
			}
			e, err := newEngine(ctx, p)
			if err != nil {
				return err
			}
			defer e.Close()

			if metricsAddr != "" {
				serveMetrics(ctx, metricsAddr, e.registry)
			}

			job := session.NewCleanupJob(e.store, session.CleanupConfig{RetentionDays: p.RetentionDays, Cache: e.cache})
			job.Start(ctx)
			defer job.Stop()

			if sessionID == "" {
				sessionID = shortuuid.New()
			}
			err = runREPL(ctx, e, sessionID, cmd.InOrStdin(), cmd.OutOrStdout())

			if showStats {
				out, _ := json.MarshalIndent(e.recorder.Stats(), "", "  ")
				fmt.Fprintln(cmd.ErrOrStderr(), string(out))
			}
			return err
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "resume an existing session id (default: new session)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().BoolVar(&showStats, "stats", true, "print turn and model statistics on exit")
	return cmd
}

// runREPL feeds each input line to the orchestrator until EOF, /quit or ctx is done.
// /reset starts a new session and drops the cached copy of the old one.
func runREPL(ctx context.Context, e *engine, sessionID string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "session %s (type /quit to exit, /reset for a new session)\n", sessionID)

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		fmt.Fprint(out, "> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			if err := e.memory.Clear(ctx, sessionID); err != nil {
				slog.Warn("failed to clear session", "session_id", sessionID, "error", err)
			}
			sessionID = shortuuid.New()
			fmt.Fprintf(out, "session %s\n", sessionID)
			continue
		}

		reply := e.orchestrator.ProcessMessage(ctx, sessionID, line)
		fmt.Fprintf(out, "\n%s\n\n", reply)
	}
}
