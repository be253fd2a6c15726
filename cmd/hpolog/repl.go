package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rickchristie/hpolog"
	"github.com/rickchristie/hpolog/checkpoint"
	"github.com/rickchristie/hpolog/internal/repl"
	"github.com/rickchristie/hpolog/sink"
)

func newReplCmd(a *app) *cobra.Command {
	var script string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Open blocks, set fields and flush reports interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := a.store(ctx, a.opts.Checkpoint)
			if err != nil {
				return err
			}

			session, closeSink, err := a.session(ctx, store, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer func() {
				if err := closeSink(); err != nil {
					a.logger.Warn("failed to write reports",
						zap.String("file", a.opts.ReportFile), zap.Error(err))
				}
			}()

			if script != "" {
				f, err := os.Open(script)
				if err != nil {
					return fmt.Errorf("failed to open script: %w", err)
				}
				defer f.Close()
				return session.Run(ctx, f, cmd.OutOrStdout())
			}
			return a.interactive(cmd, session)
		},
	}
	cmd.Flags().StringVar(&script, "script", "", "run commands from a file instead of a prompt")
	return cmd
}

// session builds the Printer and its sinks and restores the configured
// checkpoint into it. The returned func drains and closes the report file.
func (a *app) session(ctx context.Context, store *checkpoint.Store, w io.Writer) (*repl.Session, func() error, error) {
	printer, closeSink, err := a.printer()
	if err != nil {
		return nil, nil, err
	}

	msg, err := restoreCheckpoint(ctx, printer, store, a.opts.Checkpoint)
	if err != nil {
		closeSink()
		return nil, nil, err
	}
	if msg != "" {
		fmt.Fprintln(w, msg)
	}

	session := repl.NewSession(printer, store).
		WithCheckpoint(a.opts.Checkpoint).
		WithLogger(a.logger)
	return session, closeSink, nil
}

// restoreCheckpoint loads location into p. Only a checkpoint that does not
// exist yet starts a fresh table; any other failure is returned, so the first
// flush never overwrites a checkpoint that could not be read.
func restoreCheckpoint(ctx context.Context, p *hpolog.Printer, store *checkpoint.Store, location string) (string, error) {
	if location == "" {
		return "", nil
	}
	snap, err := store.Load(ctx, location)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return fmt.Sprintf("no checkpoint at %s, starting fresh", location), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to restore checkpoint: %w", err)
	}
	if err := p.RestoreState(snap); err != nil {
		return "", err
	}
	return fmt.Sprintf("restored %d configs from %s", snap.Counter, location), nil
}

// printer builds the Printer described by the options. The returned func
// closes the report file, if any, and returns the write errors.
func (a *app) printer() (*hpolog.Printer, func() error, error) {
	p := hpolog.NewPrinter().WithLogger(a.logger)
	if attr := a.opts.Extractor(); attr != nil {
		p.WithExtractor(attr)
	}
	if a.opts.ReportFile == "" {
		return p, func() error { return nil }, nil
	}

	f, err := os.OpenFile(a.opts.ReportFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open report file: %w", err)
	}
	file := sink.NewAsync(sink.NewWriter(f).WithTimestamp("2006-01-02 15:04:05.000"))
	out := sink.NewFanout().
		Register(file).
		Register(hpolog.NewLoggerSink(a.logger))
	closeSink := func() error {
		return errors.Join(file.Close(), f.Close())
	}
	return p.WithSink(out), closeSink, nil
}

func (a *app) interactive(cmd *cobra.Command, session *repl.Session) error {
	items := make([]readline.PrefixCompleterInterface, 0)
	for _, name := range repl.Commands() {
		items = append(items, readline.PcItem(name))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          colorCyan + "hpolog> " + colorReset,
		HistoryFile:     a.opts.HistoryFile,
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%sType 'help' for commands, 'quit' to leave.%s\n", colorDim, colorReset)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		out, err := session.Exec(cmd.Context(), line)
		if errors.Is(err, repl.ErrQuit) {
			return nil
		}
		if err != nil {
			a.logger.Debug("command failed", zap.String("line", strings.TrimSpace(line)), zap.Error(err))
			fmt.Fprintf(w, "%s%v%s\n", colorRed, err, colorReset)
			continue
		}
		if out != "" {
			fmt.Fprintln(w, out)
		}
	}
}
