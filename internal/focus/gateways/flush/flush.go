// Package flush invalidates the operating system resolver cache by running
// one platform command.
package flush

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/albibenni/focus/internal/focus/common/log"
	"github.com/albibenni/focus/internal/focus/domain"
)

// Runner starts name with args, waits for it to exit and returns its error.
type Runner func(ctx context.Context, name string, args ...string) error

// Flusher runs the cache flush command. It never retries.
type Flusher struct {
	command string
	flag    string
	run     Runner
	logger  log.Logger
}

type Options struct {
	Command string
	Flag    string
	// Runner replaces process execution, mostly in tests.
	Runner Runner
	Logger log.Logger
}

func New(opts Options) *Flusher {
	f := &Flusher{
		command: opts.Command,
		flag:    opts.Flag,
		run:     opts.Runner,
		logger:  opts.Logger,
	}
	if f.run == nil {
		f.run = execRunner
	}
	if f.logger == nil {
		f.logger = log.NewNoopLogger()
	}
	return f
}

// Flush runs the command once. A launch failure or non-zero exit returns an
// error wrapping domain.ErrCacheFlush and the cause.
func (f *Flusher) Flush(ctx context.Context) error {
	if f.command == "" {
		return fmt.Errorf("%w: no flush command configured", domain.ErrCacheFlush)
	}

	var args []string
	if f.flag != "" {
		args = []string{f.flag}
	}

	start := time.Now()
	err := f.run(ctx, f.command, args...)
	fields := map[string]any{
		"command": f.command,
		"flag":    f.flag,
		"elapsed": time.Since(start).String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		f.logger.Debug(fields, "cache_flush_failed")
		return fmt.Errorf("%w: %s %s: %s", domain.ErrCacheFlush, f.command, f.flag, describe(err))
	}
	f.logger.Debug(fields, "cache_flush_ok")
	return nil
}

// execRunner runs the command with no stdin and discarded output.
func execRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run()
}

// describe turns process errors into short messages.
func describe(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Sprintf("exited with status %d", exitErr.ExitCode())
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Sprintf("could not launch: %v", err)
	}
	return err.Error()
}
