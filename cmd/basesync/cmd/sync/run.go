package sync

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/basesync/internal/cmd/application"
	"github.com/agentstation/basesync/internal/cmd/emoji"
	"github.com/agentstation/basesync/internal/cmd/output"
	"github.com/agentstation/basesync/internal/deps"
	"github.com/agentstation/basesync/internal/formatter"
	"github.com/agentstation/basesync/internal/git"
	"github.com/agentstation/basesync/pkg/errors"
	"github.com/agentstation/basesync/pkg/pokedex"
	"github.com/agentstation/basesync/pkg/reconciler"
)

func run(cmd *cobra.Command, app application.Application, flags *Flags) error {
	ctx := cmd.Context()
	logger := app.Logger()

	singularityPath := flags.Singularity
	if flags.Repo != "" {
		// git runs inside Repo, so a relative path would resolve against it.
		abs, err := filepath.Abs(singularityPath)
		if err != nil {
			return errors.WrapIO("resolve", singularityPath, err)
		}
		singularityPath = abs
	}

	src, err := pokedex.LoadSource(flags.Source)
	if err != nil {
		return err
	}
	sing, err := pokedex.LoadSingularity(singularityPath)
	if err != nil {
		return err
	}
	logger.Debug().
		Int("records", len(sing.Records)).
		Int("source_records", len(src)).
		Msg("Loaded datasets")

	opts := []reconciler.Option{
		reconciler.WithLogger(logger),
		reconciler.WithDryRun(flags.DryRun),
		reconciler.WithLimit(flags.Limit),
	}
	if !flags.DryRun {
		tools, err := prepareTools(ctx, logger, flags)
		if err != nil {
			return err
		}
		opts = append(opts, tools...)
	}

	r, err := reconciler.New(opts...)
	if err != nil {
		return err
	}

	result, runErr := r.Run(ctx, sing, src)
	if errors.IsCanceled(runErr) {
		logger.Warn().Msg("Sync interrupted, stopping before the next record")
	}
	if result != nil {
		if err := printResult(cmd.OutOrStdout(), output.Format(app.OutputFormat()), result); err != nil {
			logger.Warn().Err(err).Msg("Failed to print sync report")
		}
	}
	return runErr
}

// prepareTools checks the external tools and builds the formatter and
// committer. A missing git aborts before anything is written; a missing
// formatter only disables formatting.
func prepareTools(ctx context.Context, logger *zerolog.Logger, flags *Flags) ([]reconciler.Option, error) {
	client := git.NewClient(flags.Repo)

	gitDep := deps.Git(client.Binary)
	if status := deps.Check(ctx, gitDep); !status.Available {
		return nil, &errors.DependencyError{Dependency: gitDep.Name, Message: status.CheckError.Error()}
	}

	var f reconciler.Formatter = formatter.Nop{}
	if !flags.NoFormat {
		runner := formatter.New(flags.Formatter)
		runner.Dir = flags.Repo
		fmtDep := deps.Formatter(runner.Command)
		if status := deps.Check(ctx, fmtDep); status.Available {
			f = runner
		} else {
			logger.Warn().
				Str("formatter", runner.Command).
				Str("install", fmtDep.InstallURL).
				Msg("Formatter not found, files will not be formatted")
		}
	}

	return []reconciler.Option{
		reconciler.WithCommitter(client),
		reconciler.WithFormatter(f),
	}, nil
}

func printResult(w io.Writer, format output.Format, result *reconciler.Result) error {
	printer := output.NewFormatter(format)
	if format == output.FormatJSON || format == output.FormatYAML {
		return printer.Format(w, result)
	}

	if result.Changeset.HasChanges() {
		if err := printer.Format(w, output.ChangesetToTableData(result.Changeset)); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	if err := printer.Format(w, output.ResultToTableData(result)); err != nil {
		return err
	}

	symbol := emoji.Success
	if result.FormatFailures > 0 {
		symbol = emoji.Warning
	}
	if result.DryRun {
		symbol = emoji.Info
	}
	_, err := fmt.Fprintf(w, "%s %s\n", symbol, result.String())
	return err
}
