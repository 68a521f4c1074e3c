package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/idelchi/filemeta/internal/filemeta"
)

// newLogger creates the stderr logger used for the run.
func newLogger(writer io.Writer, debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(writer)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)

	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger
}

// isTerminal reports whether writer is a terminal.
func isTerminal(writer io.Writer) bool {
	f, ok := writer.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

func logic(ctx context.Context, options Options, paths []string, stdout, stderr io.Writer) error {
	enableProgress := strings.ToLower(options.Output) != "json" &&
		!options.Debug &&
		isTerminal(stderr)

	strategy, err := filemeta.ParseStrategy(options.Strategy)
	if err != nil {
		return err
	}

	location := time.Local
	if options.UTC {
		location = time.UTC
	}

	logger := newLogger(stderr, options.Debug)

	// Simple progress callback that prints directly to stderr
	var progressHook func(filemeta.Progress)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(p filemeta.Progress) {
			msg := fmt.Sprintf("Inspecting… %d/%d files, %s",
				p.Done, p.Total, humanize.IBytes(uint64(p.Bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	report, err := filemeta.Run(ctx, paths, filemeta.Options{
		Workers:        options.Workers,
		Strategy:       strategy,
		Location:       location,
		Recursive:      options.Recursive,
		RequireResults: options.Strict,
		Logger:         logger,
	}, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil && !errors.Is(err, filemeta.ErrNoResults) {
		return err
	}

	switch strings.ToLower(options.Output) {
	case "json":
		if err := PrintJSON(report, stdout); err != nil {
			return err
		}
	case "text":
		if err := PrintText(report, stdout); err != nil {
			return err
		}

		if err := PrintSkipped(report, stderr); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format: %s", options.Output)
	}

	if err != nil {
		return err
	}

	if options.Strict {
		if skipped := report.Err(); skipped != nil {
			return fmt.Errorf("%d of %d files skipped: %w", len(report.Skipped), report.Total, skipped)
		}
	}

	return nil
}
