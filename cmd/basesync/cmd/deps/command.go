// Package deps provides the deps command, which checks the external tools
// a sync shells out to.
package deps

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/basesync/internal/cmd/application"
	"github.com/agentstation/basesync/internal/cmd/emoji"
	"github.com/agentstation/basesync/internal/cmd/output"
	"github.com/agentstation/basesync/internal/deps"
	"github.com/agentstation/basesync/pkg/constants"
	"github.com/agentstation/basesync/pkg/errors"
)

// DependencyDetail combines dependency definition with status.
type DependencyDetail struct {
	Dependency deps.Dependency       `json:"dependency" yaml:"dependency"`
	Status     deps.DependencyStatus `json:"status" yaml:"status"`
}

// CheckResults aggregates all statuses.
type CheckResults struct {
	Dependencies  []DependencyDetail `json:"dependencies" yaml:"dependencies"`
	TotalDeps     int                `json:"total_deps" yaml:"total_deps"`
	AvailableDeps int                `json:"available_deps" yaml:"available_deps"`
	MissingDeps   int                `json:"missing_deps" yaml:"missing_deps"`
}

// NewCommand creates the deps command.
func NewCommand(app application.Application) *cobra.Command {
	var formatterCmd string

	cmd := &cobra.Command{
		Use:     "deps",
		GroupID: "management",
		Short:   "Check external tool dependencies",
		Long: `Check that the tools basesync runs are installed and on PATH.

git is required: every change is staged and committed with it.
The formatter (pre-commit by default) is optional: when it is missing or
fails, files are left unformatted and the sync carries on.`,
		Example: `  basesync deps
  basesync deps -o json
  basesync deps --formatter /usr/local/bin/pre-commit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("formatter") {
				formatterCmd = app.Settings().Formatter
			}
			results := collect(cmd.Context(), deps.Defaults(constants.GitCommand, formatterCmd))

			if err := display(cmd.OutOrStdout(), output.Format(app.OutputFormat()), results); err != nil {
				return err
			}

			for _, d := range results.Dependencies {
				if d.Dependency.Required && !d.Status.Available {
					return &errors.ValidationError{
						Field:   "dependencies",
						Message: "required dependencies are missing",
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&formatterCmd, "formatter", "", "formatter command to check (default pre-commit)")
	return cmd
}

// collect checks every dependency in order.
func collect(ctx context.Context, list []deps.Dependency) *CheckResults {
	statuses := deps.CheckAll(ctx, list)
	results := &CheckResults{Dependencies: make([]DependencyDetail, 0, len(list))}
	for _, dep := range list {
		status := statuses[dep.Name]
		results.Dependencies = append(results.Dependencies, DependencyDetail{Dependency: dep, Status: status})
		results.TotalDeps++
		if status.Available {
			results.AvailableDeps++
		} else {
			results.MissingDeps++
		}
	}
	return results
}

func display(w io.Writer, format output.Format, results *CheckResults) error {
	printer := output.NewFormatter(format)
	if format == output.FormatJSON || format == output.FormatYAML {
		return printer.Format(w, results)
	}

	data := output.Data{
		Headers:         []string{"Dependency", "Status", "Version", "Path"},
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignLeft, output.AlignLeft, output.AlignLeft},
	}
	for _, d := range results.Dependencies {
		data.Rows = append(data.Rows, []string{
			d.Dependency.DisplayName,
			statusText(d),
			valueOr(d.Status.Version, emoji.Optional),
			valueOr(d.Status.Path, emoji.Optional),
		})
	}
	if err := printer.Format(w, data); err != nil {
		return err
	}

	for _, d := range results.Dependencies {
		if !d.Status.Available {
			fmt.Fprintf(w, "\n%s %s: %s\n  Install: %s\n", emoji.Info, d.Dependency.DisplayName, d.Dependency.Description, d.Dependency.InstallURL)
		}
	}
	return nil
}

func statusText(d DependencyDetail) string {
	switch {
	case d.Status.Available && d.Status.CheckError != nil:
		return emoji.Warning + " " + d.Status.CheckError.Error()
	case d.Status.Available:
		return emoji.Success + " Installed"
	case d.Dependency.Required:
		return emoji.Error + " Missing (required)"
	default:
		return emoji.Warning + " Missing (optional)"
	}
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
