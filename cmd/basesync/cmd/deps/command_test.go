package deps

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/basesync/internal/cmd/application"
	"github.com/agentstation/basesync/internal/deps"
)

func TestCollect(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-formatter")
	results := collect(context.Background(), []deps.Dependency{deps.Formatter(missing)})

	assert.Equal(t, 1, results.TotalDeps)
	assert.Equal(t, 1, results.MissingDeps)
	assert.Equal(t, results.TotalDeps, results.AvailableDeps+results.MissingDeps)
	require.Len(t, results.Dependencies, 1)
	assert.Equal(t, "formatter", results.Dependencies[0].Dependency.Name)
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "✓ Installed", statusText(DependencyDetail{Status: deps.DependencyStatus{Available: true}}))
	assert.Equal(t, "✗ Missing (required)", statusText(DependencyDetail{Dependency: deps.Dependency{Required: true}}))
	assert.Equal(t, "! Missing (optional)", statusText(DependencyDetail{}))
}

func TestDepsCommandJSON(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	app := &application.Mock{OutputFormatFunc: func() string { return "json" }}
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--formatter", filepath.Join(t.TempDir(), "no-such-formatter")})

	// A missing optional formatter is not an error.
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var results CheckResults
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	assert.Equal(t, 2, results.TotalDeps)
	assert.Equal(t, 1, results.MissingDeps)
	assert.True(t, results.Dependencies[0].Status.Available)
	assert.NotEmpty(t, results.Dependencies[0].Status.Path)
}
