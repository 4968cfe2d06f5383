package cli

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/transfer"
)

type exportFlags struct {
	format string
	output string
}

// NewExportCommand creates the export command. Its --format selects the file
// format and shadows the global output format.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog as CSV or JSON",
		Long: `Export writes every quote, author and topic in the catalog. The file
is written to stdout unless --output names a path.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, rootOpts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", string(transfer.FormatJSON), "file format (csv|json)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write to this path instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, opts *RootOptions, flags *exportFlags) error {
	out := &OutputFormatter{Format: "text", Writer: cmd.ErrOrStderr()}

	format, err := transfer.ParseFormat(flags.format)
	if err != nil {
		return fail(out, "resolving file format", err)
	}

	ctx := cmd.Context()

	e, err := openEnv(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return fail(out, "opening catalog", err)
	}
	defer e.Close()

	data, err := e.transfer.Export(ctx)
	if err != nil {
		return fail(out, "exporting", err)
	}

	var buf bytes.Buffer
	if err := transfer.Encode(format, &buf, data); err != nil {
		return fail(out, "encoding export", err)
	}

	if flags.output == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(flags.output, buf.Bytes(), 0o600); err != nil {
		return fail(out, "writing export", err)
	}

	e.logger.Debug("wrote export", slog.String("path", flags.output), slog.String("format", string(format)))
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d quotes to %s\n", len(data.Quotes), flags.output)

	return nil
}
