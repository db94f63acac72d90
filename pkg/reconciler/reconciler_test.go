package reconciler_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/basesync/pkg/errors"
	"github.com/agentstation/basesync/pkg/logging"
	"github.com/agentstation/basesync/pkg/pokedex"
	"github.com/agentstation/basesync/pkg/reconciler"
)

type commit struct {
	path    string
	message string
	content string
}

type fakeCommitter struct {
	commits []commit
	err     error
}

func (f *fakeCommitter) Commit(ctx context.Context, path, message string) error {
	logging.FromContext(ctx).Debug().Str("path", path).Msg("fake commit")
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f.commits = append(f.commits, commit{path: path, message: message, content: string(data)})
	return nil
}

type fakeFormatter struct {
	calls int
	err   error
}

func (f *fakeFormatter) Format(context.Context, string) error {
	f.calls++
	return f.err
}

type countingPersister struct {
	saves int
}

func (p *countingPersister) Persist(_ context.Context, s *pokedex.Singularity) error {
	p.saves++
	return s.Save()
}

const bulbasaurSource = `{
  "1": {"base": {"hp": 45, "attack": 49, "defense": 49, "special_attack": 65, "special_defense": 65, "speed": 45}, "url": "https://example.org/1"},
  "2": {"base": {"hp": 60, "attack": 62, "defense": 63, "special_attack": 80, "special_defense": 80, "speed": 60}, "url": "https://example.org/2"},
  "3": {"base": {"hp": 80, "attack": 82, "defense": 83, "special_attack": 100, "special_defense": 100, "speed": 80}, "url": "https://example.org/3"}
}`

const bulbasaurBase = `{"HP":45,"Attack":49,"Defense":49,"Sp. Attack":65,"Sp. Defense":65,"Speed":45}`

type fixture struct {
	path      string
	sing      *pokedex.Singularity
	src       pokedex.Source
	persister *countingPersister
	formatter *fakeFormatter
	committer *fakeCommitter
}

func newFixture(t *testing.T, singularity string) *fixture {
	t.Helper()
	dir := t.TempDir()

	srcPath := filepath.Join(dir, "source.json")
	require.NoError(t, os.WriteFile(srcPath, []byte(bulbasaurSource), 0o600))
	src, err := pokedex.LoadSource(srcPath)
	require.NoError(t, err)

	path := filepath.Join(dir, "pokedex.json")
	require.NoError(t, os.WriteFile(path, []byte(singularity), 0o600))
	sing, err := pokedex.LoadSingularity(path)
	require.NoError(t, err)

	return &fixture{
		path:      path,
		sing:      sing,
		src:       src,
		persister: &countingPersister{},
		formatter: &fakeFormatter{},
		committer: &fakeCommitter{},
	}
}

func (f *fixture) reconciler(t *testing.T, opts ...reconciler.Option) *reconciler.Reconciler {
	t.Helper()
	opts = append([]reconciler.Option{
		reconciler.WithPersister(f.persister),
		reconciler.WithFormatter(f.formatter),
		reconciler.WithCommitter(f.committer),
		reconciler.WithLogger(logging.NewNopLogger()),
	}, opts...)
	r, err := reconciler.New(opts...)
	require.NoError(t, err)
	return r
}

func TestRunAddsMissingBase(t *testing.T) {
	f := newFixture(t, `[{"id": 1, "name": {"english": "Bulbasaur"}}]`)

	result, err := f.reconciler(t).Run(context.Background(), f.sing, f.src)
	require.NoError(t, err)

	require.Len(t, f.committer.commits, 1)
	c := f.committer.commits[0]
	assert.Equal(t, f.path, c.path)
	assert.Equal(t, "Add base to `Bulbasaur`\n\nValue is from <https://example.org/1>", c.message)

	want := `[
  {
    "id": 1,
    "name": {
      "english": "Bulbasaur"
    },
    "base": {
      "HP": 45,
      "Attack": 49,
      "Defense": 49,
      "Sp. Attack": 65,
      "Sp. Defense": 65,
      "Speed": 45
    }
  }
]
`
	assert.Equal(t, want, c.content, "file is written before the commit")

	assert.Equal(t, 1, f.persister.saves)
	assert.Equal(t, 1, f.formatter.calls)
	assert.Equal(t, 1, result.Committed)
	assert.Equal(t, 1, result.Changeset.Summary.Added)
	assert.False(t, result.DryRun)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))
}

func TestRunEqualBaseIsUntouched(t *testing.T) {
	f := newFixture(t, `[{"id": 1, "name": {"english": "Bulbasaur"}, "base": {"Speed": 45.0, "HP": 45, "Attack": 49, "Defense": 49, "Sp. Attack": 65, "Sp. Defense": 65}}]`)
	before, err := os.ReadFile(f.path)
	require.NoError(t, err)

	result, err := f.reconciler(t).Run(context.Background(), f.sing, f.src)
	require.NoError(t, err)

	assert.Empty(t, f.committer.commits)
	assert.Zero(t, f.persister.saves)
	assert.Zero(t, f.formatter.calls)
	assert.Equal(t, 1, result.Changeset.Summary.Unchanged)

	after, err := os.ReadFile(f.path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestRunReplacesDifferentBase(t *testing.T) {
	f := newFixture(t, `[{"id": 1, "name": {"english": "Bulbasaur"}, "base": {"HP": 1, "Attack": 49, "Defense": 49, "Sp. Attack": 65, "Sp. Defense": 65, "Speed": 45, "Total": 274}}]`)

	result, err := f.reconciler(t).Run(context.Background(), f.sing, f.src)
	require.NoError(t, err)

	require.Len(t, f.committer.commits, 1)
	assert.Equal(t, "Update base of `Bulbasaur`\n\nValue is from <https://example.org/1>", f.committer.commits[0].message)
	assert.Equal(t, 1, result.Changeset.Summary.Updated)

	raw, ok := f.sing.Records[0].Raw(pokedex.KeyBase)
	require.True(t, ok)
	assert.JSONEq(t, bulbasaurBase, string(raw), "extra labels are dropped")
}

func TestRunReplacesQuotedNumbers(t *testing.T) {
	f := newFixture(t, `[{"id": 1, "name": {"english": "Bulbasaur"}, "base": {"HP": "45", "Attack": "49", "Defense": "49", "Sp. Attack": "65", "Sp. Defense": "65", "Speed": "45"}}]`)

	result, err := f.reconciler(t).Run(context.Background(), f.sing, f.src)
	require.NoError(t, err)

	require.Len(t, f.committer.commits, 1)
	assert.Equal(t, "Update base of `Bulbasaur`\n\nValue is from <https://example.org/1>", f.committer.commits[0].message)
	assert.Equal(t, 1, result.Changeset.Summary.Updated)
	assert.Contains(t, f.committer.commits[0].content, `"HP": 45`)
	assert.NotContains(t, f.committer.commits[0].content, `"HP": "45"`)
}

func TestRunOneCommitPerRecord(t *testing.T) {
	f := newFixture(t, `[
  {"id": 1, "name": {"english": "Bulbasaur"}},
  {"id": 2, "name": {"english": "Ivysaur"}, "base": {"HP": 60, "Attack": 62, "Defense": 63, "Sp. Attack": 80, "Sp. Defense": 80, "Speed": 60}},
  {"id": 3, "name": {"english": "Venusaur"}, "base": {"HP": 0}}
]`)

	result, err := f.reconciler(t).Run(context.Background(), f.sing, f.src)
	require.NoError(t, err)

	require.Len(t, f.committer.commits, 2)
	assert.Contains(t, f.committer.commits[0].message, "Add base to `Bulbasaur`")
	assert.Contains(t, f.committer.commits[1].message, "Update base of `Venusaur`")

	// The first commit only carries the first record's change.
	assert.NotContains(t, f.committer.commits[0].content, `"HP": 80`)
	assert.Contains(t, f.committer.commits[1].content, `"HP": 80`)

	assert.Equal(t, 3, result.Changeset.Summary.Scanned)
	assert.Equal(t, 2, result.Committed)
	assert.Equal(t, 0, result.Changeset.Changes[0].Index)
	assert.Equal(t, 2, result.Changeset.Changes[1].Index)
}

func TestRunIsIdempotent(t *testing.T) {
	f := newFixture(t, `[{"id": 1, "name": {"english": "Bulbasaur"}}, {"id": 3, "name": {"english": "Venusaur"}, "base": {}}]`)

	_, err := f.reconciler(t).Run(context.Background(), f.sing, f.src)
	require.NoError(t, err)
	require.Len(t, f.committer.commits, 2)

	reloaded, err := pokedex.LoadSingularity(f.path)
	require.NoError(t, err)

	second := &fakeCommitter{}
	r, err := reconciler.New(
		reconciler.WithFormatter(&fakeFormatter{}),
		reconciler.WithCommitter(second),
		reconciler.WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)

	result, err := r.Run(context.Background(), reloaded, f.src)
	require.NoError(t, err)
	assert.Empty(t, second.commits)
	assert.True(t, result.Changeset.IsEmpty())
}

func TestRunFormatterFailureContinues(t *testing.T) {
	f := newFixture(t, `[{"id": 1, "name": {"english": "Bulbasaur"}}, {"id": 2, "name": {"english": "Ivysaur"}}]`)
	f.formatter.err = errors.NewProcessError("format", []string{"pre-commit"}, "files were modified by this hook", 1, errors.New("exit status 1"))

	result, err := f.reconciler(t).Run(context.Background(), f.sing, f.src)
	require.NoError(t, err)

	assert.Len(t, f.committer.commits, 2)
	assert.Equal(t, 2, result.FormatFailures)
}

func TestRunCommitFailureAborts(t *testing.T) {
	f := newFixture(t, `[{"id": 1, "name": {"english": "Bulbasaur"}}, {"id": 2, "name": {"english": "Ivysaur"}}]`)
	f.committer.err = errors.NewProcessError("commit", []string{"git", "commit", "--file=-"}, "nothing to commit", 1, errors.New("exit status 1"))

	result, err := f.reconciler(t).Run(context.Background(), f.sing, f.src)
	require.Error(t, err)

	var syncErr *errors.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "Bulbasaur:0001", syncErr.Record)
	assert.Equal(t, "commit", syncErr.Step)
	assert.True(t, errors.IsCommandFailed(err))

	// The first record was written but the second was never reached.
	assert.Equal(t, 1, f.persister.saves)
	assert.Equal(t, 0, result.Committed)
	assert.Equal(t, 1, result.Changeset.Summary.Scanned)

	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Sp. Attack": 65`)
}

func TestRunMissingSourceAborts(t *testing.T) {
	f := newFixture(t, `[{"id": 1, "name": {"english": "Bulbasaur"}}, {"id": 999, "name": {"english": "Missingno"}}]`)

	result, err := f.reconciler(t).Run(context.Background(), f.sing, f.src)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	var syncErr *errors.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "lookup", syncErr.Step)
	assert.Equal(t, "Missingno:0999", syncErr.Record)

	assert.Equal(t, 1, result.Committed, "earlier records stay committed")
}

func TestRunMissingStatKeyAborts(t *testing.T) {
	f := newFixture(t, `[{"id": 1, "name": {"english": "Bulbasaur"}}]`)
	delete(f.src["1"].Base, "speed")

	_, err := f.reconciler(t).Run(context.Background(), f.sing, f.src)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, f.committer.commits)
}

func TestRunDryRun(t *testing.T) {
	f := newFixture(t, `[{"id": 1, "name": {"english": "Bulbasaur"}}]`)
	before, err := os.ReadFile(f.path)
	require.NoError(t, err)

	result, err := f.reconciler(t, reconciler.WithDryRun(true)).Run(context.Background(), f.sing, f.src)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Changeset.Summary.Added)
	assert.Zero(t, f.persister.saves)
	assert.Zero(t, f.formatter.calls)
	assert.Empty(t, f.committer.commits)
	assert.Contains(t, result.String(), "dry run")

	after, err := os.ReadFile(f.path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestRunLimit(t *testing.T) {
	f := newFixture(t, `[{"id": 1, "name": {"english": "Bulbasaur"}}, {"id": 2, "name": {"english": "Ivysaur"}}, {"id": 3, "name": {"english": "Venusaur"}}]`)

	result, err := f.reconciler(t, reconciler.WithLimit(2)).Run(context.Background(), f.sing, f.src)
	require.NoError(t, err)

	assert.Len(t, f.committer.commits, 2)
	assert.True(t, result.LimitReached)
	assert.Equal(t, 2, result.Changeset.Summary.Scanned)
}

func TestRunCanceledContext(t *testing.T) {
	f := newFixture(t, `[{"id": 1, "name": {"english": "Bulbasaur"}}]`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.reconciler(t).Run(ctx, f.sing, f.src)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, errors.IsCanceled(err))
	assert.Empty(t, f.committer.commits)
}

func TestRunLogsRecord(t *testing.T) {
	f := newFixture(t, `[{"id": 1, "name": {"english": "Bulbasaur"}}]`)
	tl := logging.NewTestLogger(t)

	_, err := f.reconciler(t, reconciler.WithLogger(tl.Logger)).Run(context.Background(), f.sing, f.src)
	require.NoError(t, err)

	tl.AssertContains(t, "Base is missing from Bulbasaur:0001")
	tl.AssertContains(t, `"record":"Bulbasaur:0001"`)

	var commitLine string
	for _, line := range tl.Lines() {
		if strings.Contains(line, "fake commit") {
			commitLine = line
		}
	}
	require.NotEmpty(t, commitLine)
	assert.Contains(t, commitLine, `"operation":"commit"`)
	assert.Contains(t, commitLine, `"record":"Bulbasaur:0001"`)
}

func TestRunFormatterFailureLogsOperation(t *testing.T) {
	f := newFixture(t, `[{"id": 1, "name": {"english": "Bulbasaur"}}]`)
	f.formatter.err = errors.New("pre-commit exploded")
	tl := logging.NewTestLogger(t)

	_, err := f.reconciler(t, reconciler.WithLogger(tl.Logger)).Run(context.Background(), f.sing, f.src)
	require.NoError(t, err)

	tl.AssertContains(t, "Formatter failed, continuing")
	tl.AssertContains(t, `"operation":"format"`)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  reconciler.Option
	}{
		{"nil persister", reconciler.WithPersister(nil)},
		{"nil formatter", reconciler.WithFormatter(nil)},
		{"nil committer", reconciler.WithCommitter(nil)},
		{"nil differ", reconciler.WithDiffer(nil)},
		{"negative limit", reconciler.WithLimit(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reconciler.New(tt.opt)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}
