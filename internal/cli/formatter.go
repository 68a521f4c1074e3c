package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/idelchi/filemeta/internal/filemeta"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON outputs the report in JSON format.
func PrintJSON(report *filemeta.Report, writer io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintText outputs the rendered report verbatim.
func PrintText(report *filemeta.Report, writer io.Writer) error {
	_, err := fmt.Fprintln(writer, report.Text)

	return err
}

// PrintSkipped lists the files that were left out of the report.
// Nothing is written when no file was skipped.
func PrintSkipped(report *filemeta.Report, writer io.Writer) error {
	if len(report.Skipped) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	header := color.New(color.FgYellow).Sprintf("Skipped %d of %d files:", len(report.Skipped), report.Total)
	fmt.Fprintf(w, "\n%s\t\n", header)

	for i, s := range report.Skipped {
		fmt.Fprintf(w, "  %d) '%s'\t%s\n", i+1, s.Path, s.Reason)
	}

	return w.Flush()
}
