package deps

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"git version 2.43.0", "2.43.0"},
		{"git version 2.39.3 (Apple Git-145)", "2.39.3"},
		{"pre-commit 3.6.0", "3.6.0"},
		{"tool v1.2", "1.2"},
		{"no version here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			assert.Equal(t, tt.want, extractVersion(tt.output))
		})
	}
}

func TestMeetsMinVersion(t *testing.T) {
	tests := []struct {
		detected, required string
		want               bool
	}{
		{"2.43.0", "2.0.0", true},
		{"2.9.0", "2.10.0", false},
		{"2.10.0", "2.9.0", true},
		{"v3.0", "3.0.0", true},
		{"1.0.0", "1.0.1", false},
		{"1.0.0", "1.0.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.detected+">="+tt.required, func(t *testing.T) {
			assert.Equal(t, tt.want, meetsMinVersion(tt.detected, tt.required))
		})
	}
}

func TestCheckMissing(t *testing.T) {
	dep := Dependency{
		Name:          "missing",
		DisplayName:   "Missing Tool",
		CheckCommands: []string{filepath.Join(t.TempDir(), "does-not-exist")},
	}

	status := Check(context.Background(), dep)
	assert.False(t, status.Available)
	assert.Error(t, status.CheckError)
	assert.Contains(t, status.CheckError.Error(), "Missing Tool not found in PATH")

	statuses := CheckAll(context.Background(), []Dependency{dep})
	assert.True(t, HasMissingDeps(statuses))
	assert.Equal(t, []Dependency{dep}, GetMissingDeps([]Dependency{dep}, statuses))
}

func TestCheckGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	status := Check(context.Background(), Git(""))
	assert.True(t, status.Available)
	assert.NotEmpty(t, status.Path)
	assert.NotEmpty(t, status.Version)
}

func TestDefaults(t *testing.T) {
	deps := Defaults("", "")
	if assert.Len(t, deps, 2) {
		assert.Equal(t, []string{"git"}, deps[0].CheckCommands)
		assert.True(t, deps[0].Required)
		assert.Equal(t, []string{"pre-commit"}, deps[1].CheckCommands)
		assert.False(t, deps[1].Required)
	}
}
