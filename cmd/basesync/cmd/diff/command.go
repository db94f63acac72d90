// Package diff provides the diff command, a read-only preview of what a
// sync would commit.
package diff

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/basesync/internal/cmd/application"
	"github.com/agentstation/basesync/internal/cmd/emoji"
	"github.com/agentstation/basesync/internal/cmd/output"
	"github.com/agentstation/basesync/pkg/differ"
	"github.com/agentstation/basesync/pkg/pokedex"
)

// NewCommand creates the diff command.
func NewCommand(app application.Application) *cobra.Command {
	var source, singularity string
	var exitCode bool

	cmd := &cobra.Command{
		Use:     "diff --source <path>",
		GroupID: "core",
		Short:   "Show which records a sync would change",
		Long: `Diff compares the singularity file with the source dataset and lists
every record whose base would be added or updated, with the stats that
change. Nothing is written.`,
		Example: `  basesync diff --source source.json
  basesync diff --source source.json -o yaml
  basesync diff --source source.json --exit-code   # exit 1 when out of sync`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("singularity") {
				singularity = app.Settings().Singularity
			}

			src, err := pokedex.LoadSource(source)
			if err != nil {
				return err
			}
			sing, err := pokedex.LoadSingularity(singularity)
			if err != nil {
				return err
			}

			cs, err := differ.New().Singularity(sing, src)
			if err != nil {
				return err
			}
			app.Logger().Debug().Int("changes", cs.Summary.TotalChanges).Msg("Compared singularity with source")

			if err := printChangeset(cmd.OutOrStdout(), output.Format(app.OutputFormat()), cs); err != nil {
				return err
			}
			if exitCode && cs.HasChanges() {
				return fmt.Errorf("%d records out of sync", cs.Summary.TotalChanges)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "path to the source dataset (required)")
	cmd.Flags().StringVar(&singularity, "singularity", "", "path to the singularity file (default pokedex.json)")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "exit with status 1 when there are changes")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func printChangeset(w io.Writer, format output.Format, cs *differ.Changeset) error {
	printer := output.NewFormatter(format)
	if format == output.FormatJSON || format == output.FormatYAML {
		return printer.Format(w, cs)
	}

	if cs.HasChanges() {
		if err := printer.Format(w, output.ChangesetToTableData(cs)); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	symbol := emoji.Success
	if cs.HasChanges() {
		symbol = emoji.Warning
	}
	_, err := fmt.Fprintf(w, "%s %s\n", symbol, cs.String())
	return err
}
