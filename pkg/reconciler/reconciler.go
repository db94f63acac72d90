// Package reconciler brings the base stats of a singularity file in line
// with the source dataset, one record and one commit at a time.
package reconciler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/agentstation/utc"

	"github.com/agentstation/basesync/internal/formatter"
	"github.com/agentstation/basesync/pkg/differ"
	"github.com/agentstation/basesync/pkg/errors"
	"github.com/agentstation/basesync/pkg/logging"
	"github.com/agentstation/basesync/pkg/pokedex"
)

// Persister writes the whole singularity file.
type Persister interface {
	Persist(ctx context.Context, s *pokedex.Singularity) error
}

// Formatter formats the file after it is written.
type Formatter = formatter.Formatter

// Committer records one change of the file in version control.
type Committer interface {
	Commit(ctx context.Context, path, message string) error
}

// FilePersister saves the singularity back to the path it was loaded from.
type FilePersister struct{}

// Persist implements Persister.
func (FilePersister) Persist(_ context.Context, s *pokedex.Singularity) error {
	return s.Save()
}

// Reconciler runs the sync loop.
type Reconciler struct {
	opts *options
}

// New creates a Reconciler. By default it saves to disk, formats with
// pre-commit and commits with git in the current directory.
func New(opts ...Option) (*Reconciler, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Reconciler{opts: o}, nil
}

// Run walks s in file order. Each record whose base differs from the source
// is updated in memory, then the file is saved, formatted and committed
// before the next record is looked at.
//
// A canceled ctx stops the run before the next record with an error
// matching both errors.ErrCanceled and the context error. A lookup, save or
// commit failure stops the run. The file may already be modified on disk at
// that point; the returned Result still describes what was done.
func (r *Reconciler) Run(ctx context.Context, s *pokedex.Singularity, src pokedex.Source) (*Result, error) {
	result := newResult(r.opts.dryRun)
	defer func() {
		result.FinishedAt = utc.Now()
		result.Duration = result.FinishedAt.Sub(result.StartedAt)
	}()

	logger := r.opts.logger.With().Str("file", s.Path).Logger()
	ctx = logging.WithLogger(ctx, &logger)

	for i, rec := range s.Records {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
		}
		if r.opts.limit > 0 && result.Changeset.Summary.TotalChanges >= r.opts.limit {
			result.LimitReached = true
			logger.Info().Int("limit", r.opts.limit).Msg("Change limit reached")
			return result, nil
		}

		if err := r.reconcile(ctx, i, rec, s, src, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (r *Reconciler) reconcile(ctx context.Context, index int, rec *pokedex.Record, s *pokedex.Singularity, src pokedex.Source, result *Result) error {
	id, err := rec.ID()
	if err != nil {
		return errors.WrapResource("read", "record", strconv.Itoa(index), err)
	}

	srcRec, err := src.Lookup(id)
	if err != nil {
		return errors.NewSyncError(recordLabel(rec, id), "lookup", err)
	}

	change, err := r.opts.differ.Compare(rec, srcRec)
	if err != nil {
		return errors.NewSyncError(recordLabel(rec, id), "compare", err)
	}
	if change == nil {
		result.Changeset.Record(nil)
		logging.FromContext(ctx).Debug().Int("id", id).Msg("Base is up to date")
		return nil
	}
	change.Index = index

	ctx = logging.WithRecord(ctx, change.DisplayID)
	logger := logging.FromContext(ctx)
	switch change.Type {
	case differ.ChangeTypeAdd:
		logger.Info().Msgf("Base is missing from %s", change.DisplayID)
	default:
		logger.Info().Msgf("Base is different in %s", change.DisplayID)
	}

	if err := rec.SetBase(change.New); err != nil {
		return errors.NewSyncError(change.DisplayID, "apply", err)
	}
	result.Changeset.Record(change)

	if r.opts.dryRun {
		logger.Info().Str("title", change.Title).Msg("Dry run, not committing")
		return nil
	}

	if err := r.opts.persister.Persist(logging.WithOperation(ctx, "save"), s); err != nil {
		return errors.NewSyncError(change.DisplayID, "save", err)
	}

	formatCtx := logging.WithOperation(ctx, "format")
	if err := r.opts.formatter.Format(formatCtx, s.Path); err != nil {
		result.FormatFailures++
		logging.FromContext(formatCtx).Warn().Err(err).Msg("Formatter failed, continuing")
	}

	if err := r.opts.committer.Commit(logging.WithOperation(ctx, "commit"), s.Path, change.Message()); err != nil {
		return errors.NewSyncError(change.DisplayID, "commit", err)
	}
	result.Committed++
	logger.Info().Str("title", change.Title).Msg("Committed")
	return nil
}

// recordLabel names a record for errors raised before a Change exists.
func recordLabel(rec *pokedex.Record, id int) string {
	if name, err := rec.EnglishName(); err == nil {
		return pokedex.DisplayID(name, id)
	}
	return strconv.Itoa(id)
}
