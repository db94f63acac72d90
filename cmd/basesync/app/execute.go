package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/basesync/cmd/basesync/cmd/deps"
	"github.com/agentstation/basesync/cmd/basesync/cmd/diff"
	"github.com/agentstation/basesync/cmd/basesync/cmd/sync"
	"github.com/agentstation/basesync/cmd/basesync/cmd/version"
	"github.com/agentstation/basesync/internal/cmd/output"
	"github.com/agentstation/basesync/pkg/errors"
)

// Execute runs the basesync CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
// Running the root command itself performs a sync.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "basesync --source <path>",
		Short:   "Sync base stats from a source dataset into pokedex.json",
		Version: a.version,
		Long: `basesync keeps the "base" block of every record in a pokedex.json file
in line with a source dataset.

For each record whose base stats are missing or differ, the file is
rewritten, formatted with pre-commit and committed with git. Every record
gets its own commit titled "Add base to ` + "`Name`" + `" or "Update base of ` + "`Name`" + `".`,
		Example: `  basesync --source pokedex-source.json
  basesync --source source.json --singularity data/pokedex.json --dry-run
  basesync diff --source source.json -o json`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.basesync.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: table, json, yaml")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("basesync {{.Version}}\n")

	// The root command runs a sync with the same flags as `basesync sync`.
	sync.Bind(rootCmd, a)

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if path := mustGetString(cmd, "config"); path != "" {
		config, err := loadConfig(viper.New(), path)
		if err != nil {
			return errors.NewConfigError("config file", path, err)
		}
		a.config = config
	}

	format := mustGetString(cmd, "format")
	if _, err := output.ParseFormat(format); err != nil {
		return errors.NewValidationError("format", format, err.Error())
	}

	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		format,
		mustGetString(cmd, "log-level"),
	)

	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(sync.NewCommand(a))
	rootCmd.AddCommand(diff.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(deps.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
