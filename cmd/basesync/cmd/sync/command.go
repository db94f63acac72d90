// Package sync provides the sync command, which is also what the root
// basesync command runs.
package sync

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/basesync/internal/cmd/application"
)

// Flags holds the sync command flags.
type Flags struct {
	Source      string
	Singularity string
	Formatter   string
	NoFormat    bool
	Repo        string
	DryRun      bool
	Limit       int
}

// NewCommand creates the sync command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync --source <path>",
		GroupID: "core",
		Short:   "Sync base stats and commit each changed record",
		Long: `Sync compares the base stats of every record in the singularity file
with the source dataset, in file order.

When a record's base is missing or different it is replaced, the whole file
is rewritten and formatted, and the change is committed on its own. Formatter
failures are logged and ignored. A git failure stops the run; the file may
then be left modified but uncommitted.`,
		Example: `  basesync sync --source source.json
  basesync sync --source source.json --dry-run
  basesync sync --source source.json --limit 10 --no-format`,
		Args: cobra.NoArgs,
	}
	Bind(cmd, app)
	return cmd
}

// Bind adds the sync flags to cmd and makes it run a sync.
func Bind(cmd *cobra.Command, app application.Application) {
	flags := &Flags{}
	AddFlags(cmd, flags)
	cmd.Args = cobra.NoArgs
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return run(cmd, app, resolveFlags(cmd, app, flags))
	}
}

// AddFlags registers the sync flags on cmd.
func AddFlags(cmd *cobra.Command, flags *Flags) {
	f := cmd.Flags()
	f.StringVar(&flags.Source, "source", "", "path to the source dataset (required)")
	f.StringVar(&flags.Singularity, "singularity", "", "path to the singularity file (default pokedex.json)")
	f.StringVar(&flags.Formatter, "formatter", "", "formatter command run as `<formatter> run prettier --files <path>` (default pre-commit)")
	f.BoolVar(&flags.NoFormat, "no-format", false, "skip formatting after each rewrite")
	f.StringVar(&flags.Repo, "repo", "", "git working tree to commit in (default current directory)")
	f.BoolVar(&flags.DryRun, "dry-run", false, "report changes without writing or committing")
	f.IntVar(&flags.Limit, "limit", 0, "stop after this many changes (0 = no limit)")
	_ = cmd.MarkFlagRequired("source")
}

// resolveFlags fills unset flags from the configured settings.
func resolveFlags(cmd *cobra.Command, app application.Application, flags *Flags) *Flags {
	settings := app.Settings()
	resolved := *flags
	if !cmd.Flags().Changed("singularity") {
		resolved.Singularity = settings.Singularity
	}
	if !cmd.Flags().Changed("formatter") {
		resolved.Formatter = settings.Formatter
	}
	if !cmd.Flags().Changed("no-format") {
		resolved.NoFormat = settings.NoFormat
	}
	if !cmd.Flags().Changed("repo") {
		resolved.Repo = settings.Repo
	}
	return &resolved
}
