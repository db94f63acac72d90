package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/basesync/pkg/errors"
	"github.com/agentstation/basesync/pkg/logging"
)

// fakeGit writes a script that appends its arguments and stdin to a log
// file and exits with code.
func fakeGit(t *testing.T, code int) (binary, logPath string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	dir := t.TempDir()
	logPath = filepath.Join(dir, "calls.log")
	binary = filepath.Join(dir, "git")
	script := "#!/bin/sh\n" +
		"echo \"args: $*\" >> \"" + logPath + "\"\n" +
		"if [ \"$1\" = \"commit\" ]; then echo \"stdin: $(cat)\" >> \"" + logPath + "\"; fi\n" +
		"exit " + string(rune('0'+code)) + "\n"
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o755))
	return binary, logPath
}

func TestCommitRunsAddThenCommit(t *testing.T) {
	binary, logPath := fakeGit(t, 0)
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	c := &Client{Binary: binary}
	require.NoError(t, c.Commit(ctx, "pokedex.json", "Add base to `Bulbasaur`\n\nValue is from <https://example/1>"))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "args: add pokedex.json", lines[0])
	assert.Equal(t, "args: commit --file=-", lines[1])
	assert.Equal(t, "stdin: Add base to `Bulbasaur`", lines[2])
	assert.Contains(t, string(data), "Value is from <https://example/1>")

	tl.AssertContains(t, ">> "+binary+" add pokedex.json")
	tl.AssertContains(t, ">> "+binary+" commit --file=-")
}

func TestCommitStopsWhenAddFails(t *testing.T) {
	binary, logPath := fakeGit(t, 1)

	c := &Client{Binary: binary}
	err := c.Commit(context.Background(), "pokedex.json", "msg")
	require.Error(t, err)

	var procErr *pkgerrors.ProcessError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, "stage file", procErr.Operation)
	assert.Equal(t, 1, procErr.ExitCode)
	assert.True(t, pkgerrors.IsCommandFailed(err))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "commit")
}

func TestMissingBinary(t *testing.T) {
	c := &Client{Binary: filepath.Join(t.TempDir(), "no-such-git")}
	err := c.Add(context.Background(), "pokedex.json")

	var procErr *pkgerrors.ProcessError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, -1, procErr.ExitCode)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("/repo")
	assert.Equal(t, "/repo", c.Dir)
	assert.Equal(t, "git", c.Binary)
}

// TestCommitRealRepository exercises the real git binary in a scratch repository.
func TestCommitRealRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	gitCmd := func(args ...string) string {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
		return string(out)
	}
	gitCmd("init", "-q")
	gitCmd("config", "user.email", "basesync@example.com")
	gitCmd("config", "user.name", "basesync")
	gitCmd("config", "commit.gpgsign", "false")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pokedex.json"), []byte("[]\n"), 0o644))

	c := NewClient(dir)
	message := "Add base to `Bulbasaur`\n\nValue is from <https://example/1>"
	require.NoError(t, c.Commit(context.Background(), "pokedex.json", message))

	assert.Equal(t, message, strings.TrimSpace(gitCmd("log", "-1", "--format=%B")))

	// Nothing left to commit: git exits non-zero and the error surfaces.
	err := c.Commit(context.Background(), "pokedex.json", message)
	assert.True(t, pkgerrors.IsCommandFailed(err))
}
