package differ

// Option is a functional option for configuring a Differ
type Option func(*Differ)

// WithFieldTracking enables or disables per-label FieldChange details
func WithFieldTracking(enabled bool) Option {
	return func(d *Differ) {
		d.tracking = enabled
	}
}
