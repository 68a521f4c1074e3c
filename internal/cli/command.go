package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/filemeta/internal/filemeta"
	"github.com/idelchi/filemeta/internal/integration"
)

// Options configures a single CLI invocation.
type Options struct {
	// Workers is the maximum number of pool workers (0 = number of CPUs).
	Workers int
	// Strategy is the fan-out for batches of more than one file.
	Strategy string
	// Recursive expands directory arguments into their files.
	Recursive bool
	// Output is the output format (text or json).
	Output string
	// Strict makes skipped files a failure.
	Strict bool
	// UTC reports creation times in UTC instead of local time.
	UTC bool
	// Debug indicates whether debug output is enabled.
	Debug bool
	// Integration indicates whether to output integration script.
	Integration bool
}

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Command builds the root command. Flag defaults come from the environment (see Config).
func (c CLI) Command() (*cobra.Command, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	var options Options

	allowedOutputs := []string{"text", "json"}

	cmd := &cobra.Command{
		Use:   "filemeta [flags] [path...]",
		Short: "Report name, size, creation time and checksum of files",
		Long: heredoc.Doc(`
			filemeta inspects the given files concurrently and prints one line per file:

			  <name>;   size: <bytes> KB;   creation time: <MM/DD/YYYY HH:MM>   checksum: <sum>

			Lines are sorted and identical lines are printed once. Files that cannot be
			read are left out of the report and listed on stderr.

			The checksum is the sum of all byte values modulo 2^32. It is a cheap change
			indicator, not a cryptographic digest.

			Positional Arguments:
			  path                   Files to inspect. Use '-' to read newline-separated paths from stdin.

			Environment:
			  FILEMETA_WORKERS, FILEMETA_STRATEGY, FILEMETA_OUTPUT, FILEMETA_DEBUG set flag defaults.

			The '-i' flag prints a zsh widget that selects files with 'fzf' and pipes them into filemeta.
		`),
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if options.Integration {
				rendered, err := integration.Render()
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), rendered)

				return nil
			}

			if !slices.Contains(allowedOutputs, options.Output) {
				return fmt.Errorf("invalid output format %q: must be one of %v", options.Output, allowedOutputs)
			}

			if !slices.Contains(filemeta.Strategies, options.Strategy) {
				return fmt.Errorf("invalid strategy %q: must be one of %v", options.Strategy, filemeta.Strategies)
			}

			if options.Workers < 0 {
				return errors.New("workers cannot be negative")
			}

			paths, err := collectPaths(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			return logic(cmd.Context(), options, paths, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&options.Workers, "workers", "w", cfg.Workers, "Maximum number of pool workers (0=number of CPUs)")
	flags.StringVar(&options.Strategy, "strategy", cfg.Strategy, "Fan-out for multiple files: pool or spawn")
	flags.BoolVarP(&options.Recursive, "recursive", "r", false, "Expand directory arguments into the files below them")
	flags.StringVarP(&options.Output, "output", "o", cfg.Output, "Output format: text or json")
	flags.BoolVar(&options.Strict, "strict", false, "Fail if any file was skipped")
	flags.BoolVar(&options.UTC, "utc", false, "Report creation times in UTC instead of local time")
	flags.BoolVar(&options.Debug, "debug", cfg.Debug, "Enable debug output")
	flags.BoolVarP(&options.Integration, "init", "i", false, "Output init script for shell usage")
	flags.SortFlags = false

	return cmd, nil
}

// collectPaths returns args, or the non-empty lines of stdin when the only argument is "-".
func collectPaths(args []string, stdin io.Reader) ([]string, error) {
	if len(args) != 1 || args[0] != "-" {
		return args, nil
	}

	var paths []string

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); strings.TrimSpace(line) != "" {
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading paths from stdin: %w", err)
	}

	return paths, nil
}
