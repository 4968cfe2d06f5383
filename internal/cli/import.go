package cli

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/transfer"
	"github.com/jsamuelsen/quote-catalog/internal/app"
	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

// ImportResult is the outcome of validate and import.
type ImportResult struct {
	File       string   `json:"file"`
	Format     string   `json:"format"`
	DryRun     bool     `json:"dryRun"`
	Imported   int      `json:"imported"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	RolledBack bool     `json:"rolledBack,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// WriteText renders the result for the terminal.
func (r ImportResult) WriteText(w io.Writer) error {
	verb := "Imported"
	if r.DryRun {
		verb = "Would import"
	}

	if _, err := fmt.Fprintf(w, "%s: %s %d, skipped %d, failed %d\n",
		r.File, verb, r.Imported, r.Skipped, r.Failed); err != nil {
		return err
	}

	if r.RolledBack {
		if _, err := fmt.Fprintln(w, "All writes were rolled back."); err != nil {
			return err
		}
	}

	for _, e := range r.Errors {
		if _, err := fmt.Fprintf(w, "  %s\n", e); err != nil {
			return err
		}
	}

	return nil
}

type importFlags struct {
	input  string
	atomic bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &importFlags{}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check an import file without writing",
		Long: `Validate runs a dry-run import of a CSV or JSON catalog file against the
store and reports what would be imported, skipped and rejected.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, flags, args[0], true)
		},
	}

	cmd.Flags().StringVar(&flags.input, "input", "", "file format (csv|json); defaults to the file extension")

	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a catalog file",
		Long: `Import loads authors, topics and quotes from a CSV or JSON file.
Rows naming an unknown author or category are rejected; quotes whose text
already exists are skipped. With --atomic any rejected row undoes the import.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, flags, args[0], false)
		},
	}

	cmd.Flags().StringVar(&flags.input, "input", "", "file format (csv|json); defaults to the file extension")
	cmd.Flags().BoolVar(&flags.atomic, "atomic", false, "undo every write when any record fails")

	return cmd
}

func runImport(cmd *cobra.Command, opts *RootOptions, flags *importFlags, path string, dryRun bool) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	format, err := transfer.ParseFormat(cmp.Or(flags.input, formatFromPath(path)))
	if err != nil {
		return fail(out, "resolving file format", err)
	}

	file, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return fail(out, "opening import file", err)
	}
	defer file.Close()

	batch, err := transfer.Decode(format, file)
	if err != nil {
		return fail(out, "reading import file", err)
	}

	ctx := cmd.Context()

	e, err := openEnv(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return fail(out, "opening catalog", err)
	}
	defer e.Close()

	report, err := e.transfer.Import(ctx, batch, app.ImportOptions{
		Format: string(format),
		DryRun: dryRun,
		Atomic: flags.atomic,
	})
	if err != nil {
		return fail(out, "importing", err)
	}

	result := newImportResult(path, format, report)

	if report.Failed > 0 {
		msg := fmt.Sprintf("%d record(s) failed", report.Failed)
		if err := out.Failure(CodeRecordsFailed, msg, result); err != nil {
			return err
		}

		return NewExitError(ExitFailure, msg)
	}

	return out.Success(result)
}

func newImportResult(path string, format transfer.Format, report domain.ImportReport) ImportResult {
	r := ImportResult{
		File:       filepath.Base(path),
		Format:     string(format),
		DryRun:     report.DryRun,
		Imported:   report.Imported,
		Skipped:    report.Skipped,
		Failed:     report.Failed,
		RolledBack: report.RolledBack,
	}

	for _, e := range report.Errors {
		r.Errors = append(r.Errors, e.String())
	}

	return r
}

// formatFromPath guesses the format from the file extension. Unknown
// extensions fall through to the JSON default.
func formatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return string(transfer.FormatCSV)
	}

	return ""
}
