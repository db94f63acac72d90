package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/basesync/pkg/differ"
)

// Result represents the outcome of a sync run. It is returned alongside
// an error too, describing everything done before the failure.
type Result struct {
	// Changeset holds every change applied in memory, in file order.
	Changeset *differ.Changeset `json:"changeset" yaml:"changeset"`

	// Committed counts changes that were written and committed.
	Committed int `json:"committed" yaml:"committed"`

	// FormatFailures counts ignored formatter failures.
	FormatFailures int `json:"format_failures" yaml:"format_failures"`

	// LimitReached is set when the run stopped early because of WithLimit.
	LimitReached bool `json:"limit_reached" yaml:"limit_reached"`

	DryRun     bool          `json:"dry_run" yaml:"dry_run"`
	StartedAt  utc.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt utc.Time      `json:"finished_at" yaml:"finished_at"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

func newResult(dryRun bool) *Result {
	return &Result{
		Changeset: &differ.Changeset{Changes: []differ.Change{}},
		DryRun:    dryRun,
		StartedAt: utc.Now(),
	}
}

// String returns a one-line summary.
func (r *Result) String() string {
	summary := r.Changeset.String()
	if r.DryRun {
		return summary + " [dry run]"
	}
	return fmt.Sprintf("%s, %d committed", summary, r.Committed)
}
