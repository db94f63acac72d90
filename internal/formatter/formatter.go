// Package formatter runs the code formatter over the singularity file
// after each rewrite. Formatting is cosmetic: callers are expected to log
// a failure and carry on.
package formatter

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/agentstation/basesync/pkg/constants"
	pkgerrors "github.com/agentstation/basesync/pkg/errors"
	"github.com/agentstation/basesync/pkg/logging"
)

// Formatter formats a single file in place.
type Formatter interface {
	Format(ctx context.Context, path string) error
}

// Runner invokes `<Command> run <Hook> --files <path>`.
type Runner struct {
	Command string
	Hook    string
	Dir     string
}

// New creates a Runner for command (e.g. "pre-commit") with the prettier hook.
func New(command string) *Runner {
	if command == "" {
		command = constants.DefaultFormatter
	}
	return &Runner{
		Command: command,
		Hook:    constants.FormatterHook,
	}
}

// Args returns the full command line for path.
func (r *Runner) Args(path string) []string {
	return []string{r.Command, "run", r.Hook, "--files", path}
}

// Format runs the formatter. The returned error only describes what went
// wrong; it never means the file is unusable.
func (r *Runner) Format(ctx context.Context, path string) error {
	args := r.Args(path)
	logger := logging.FromContext(ctx)
	logger.Debug().Msgf(">> %s", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // command comes from configuration
	cmd.Dir = r.Dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return pkgerrors.NewProcessError("format", args, out.String(), code, err)
	}
	return nil
}

// Nop is a Formatter that does nothing, used with --no-format.
type Nop struct{}

// Format implements Formatter.
func (Nop) Format(context.Context, string) error { return nil }
