package differ

// Option is a functional option for configuring Differ
type Option func(*differ)

// WithIgnoredColumns excludes columns from cell comparison
func WithIgnoredColumns(columns ...string) Option {
	return func(d *differ) {
		for _, column := range columns {
			d.ignoreColumns[column] = true
		}
	}
}
