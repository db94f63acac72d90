package reconciler

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/basesync/internal/formatter"
	"github.com/agentstation/basesync/internal/git"
	"github.com/agentstation/basesync/pkg/differ"
	"github.com/agentstation/basesync/pkg/errors"
	"github.com/agentstation/basesync/pkg/logging"
)

// options configures a reconciler.
type options struct {
	persister Persister
	formatter Formatter
	committer Committer
	differ    *differ.Differ
	logger    *zerolog.Logger
	dryRun    bool
	limit     int
}

func defaultOptions() *options {
	return &options{
		persister: FilePersister{},
		formatter: formatter.New(""),
		committer: git.NewClient(""),
		differ:    differ.New(),
		logger:    logging.Default(),
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithPersister sets how the singularity file is written.
func WithPersister(p Persister) Option {
	return func(o *options) error {
		if p == nil {
			return &errors.ValidationError{Field: "persister", Message: "cannot be nil"}
		}
		o.persister = p
		return nil
	}
}

// WithFormatter sets the formatter run after each write.
func WithFormatter(f Formatter) Option {
	return func(o *options) error {
		if f == nil {
			return &errors.ValidationError{Field: "formatter", Message: "cannot be nil"}
		}
		o.formatter = f
		return nil
	}
}

// WithCommitter sets how each change is committed.
func WithCommitter(c Committer) Option {
	return func(o *options) error {
		if c == nil {
			return &errors.ValidationError{Field: "committer", Message: "cannot be nil"}
		}
		o.committer = c
		return nil
	}
}

// WithDiffer sets the differ used to compare records.
func WithDiffer(d *differ.Differ) Option {
	return func(o *options) error {
		if d == nil {
			return &errors.ValidationError{Field: "differ", Message: "cannot be nil"}
		}
		o.differ = d
		return nil
	}
}

// WithLogger sets the logger. A nil logger keeps the default.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger != nil {
			o.logger = logger
		}
		return nil
	}
}

// WithDryRun applies changes in memory only: nothing is written,
// formatted or committed.
func WithDryRun(dryRun bool) Option {
	return func(o *options) error {
		o.dryRun = dryRun
		return nil
	}
}

// WithLimit stops the run after n changes. Zero means no limit.
func WithLimit(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return &errors.ValidationError{Field: "limit", Value: n, Message: "cannot be negative"}
		}
		o.limit = n
		return nil
	}
}
