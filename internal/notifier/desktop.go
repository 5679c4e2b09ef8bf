package notifier

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Runner executes an external command
type Runner func(ctx context.Context, name string, args ...string) error

// ExecRunner runs the command and folds its output into the error on failure.
func ExecRunner(ctx context.Context, name string, args ...string) error {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(out.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// DesktopSink shows notifications through the platform notification tool
type DesktopSink struct {
	run    Runner
	logger zerolog.Logger
}

// NewDesktopSink creates a desktop sink. A nil runner uses ExecRunner.
func NewDesktopSink(run Runner, logger zerolog.Logger) *DesktopSink {
	if run == nil {
		run = ExecRunner
	}
	return &DesktopSink{
		run:    run,
		logger: logger.With().Str("component", "desktop").Logger(),
	}
}

func (d *DesktopSink) Name() string { return "desktop" }

func (d *DesktopSink) Send(ctx context.Context, msg Message) error {
	name, args, ok := desktopCommand(msg)
	if !ok {
		d.logger.Info().
			Str("title", msg.Title).
			Msg("Desktop notifications unsupported on this platform, skipping")
		return nil
	}
	return d.run(ctx, name, args...)
}
