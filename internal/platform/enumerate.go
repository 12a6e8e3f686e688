package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"

	"audiocap/internal/logging"
)

// Enumerate runs the resolver's listing tools and writes their raw output to w.
// A tool that is missing or exits non-zero is logged and skipped so the
// remaining tools still run.
func Enumerate(ctx context.Context, w io.Writer, r Resolver, prefs Preferences, ffmpegPath string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	for i, cmd := range r.ListCommands(prefs, ffmpegPath) {
		if cmd.Title != "" {
			prefix := ""
			if i > 0 {
				prefix = "\n"
			}
			if _, err := fmt.Fprintf(w, "%s=== %s ===\n", prefix, cmd.Title); err != nil {
				return err
			}
		}
		proc := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
		proc.Stdout = w
		proc.Stderr = w
		if err := proc.Run(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Debug("device listing tool failed",
				logging.String("tool", cmd.Name),
				logging.Error(err),
			)
		}
	}
	for _, note := range r.Notes(prefs) {
		if _, err := fmt.Fprintf(w, "\nNote: %s\n", note); err != nil {
			return err
		}
	}
	return nil
}
