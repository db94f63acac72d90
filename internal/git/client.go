// Package git stages and commits the singularity file. Every command is
// checked: a failure is returned as *errors.ProcessError and is meant to
// stop the run.
package git

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

// Client runs git in a working tree.
type Client struct {
	// Dir is the working tree. Empty means the current directory.
	Dir string
	// Binary is the git executable, "git" by default.
	Binary string
}

// NewClient creates a git client for the working tree at dir.
func NewClient(dir string) *Client {
	return &Client{
		Dir:    dir,
		Binary: constants.GitCommand,
	}
}

// Commit stages path and commits it with message.
func (c *Client) Commit(ctx context.Context, path, message string) error {
	if err := c.Add(ctx, path); err != nil {
		return err
	}
	return c.CommitStaged(ctx, message)
}

// Add runs `git add <path>`.
func (c *Client) Add(ctx context.Context, path string) error {
	_, err := c.run(ctx, "stage file", "", "add", path)
	return err
}

// CommitStaged runs `git commit --file=-` with message on stdin.
func (c *Client) CommitStaged(ctx context.Context, message string) error {
	_, err := c.run(ctx, "commit", message, "commit", "--file=-")
	return err
}

// run executes git with args. stdin is piped when non-empty.
func (c *Client) run(ctx context.Context, operation, stdin string, args ...string) (string, error) {
	binary := c.Binary
	if binary == "" {
		binary = constants.GitCommand
	}
	cmdline := append([]string{binary}, args...)

	logger := logging.FromContext(ctx)
	logger.Info().Msgf(">> %s", strings.Join(cmdline, " "))

	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec // arguments are built by this package
	cmd.Dir = c.Dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	output := out.String()
	if output != "" {
		logger.Debug().Str("command", cmdline[1]).Msg(strings.TrimSpace(output))
	}
	if err != nil {
		return output, pkgerrors.NewProcessError(operation, cmdline, output, exitCode(err), err)
	}
	return output, nil
}

// exitCode extracts the process exit code, or -1 if it never ran.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
