package differ

// Option is a functional option for configuring a Differ.
type Option func(*differ)

// WithCaseInsensitiveColumns matches column names regardless of case.
func WithCaseInsensitiveColumns() Option {
	return func(d *differ) {
		d.foldColumns = true
	}
}

// WithCaseInsensitiveValues compares cell values regardless of case.
func WithCaseInsensitiveValues() Option {
	return func(d *differ) {
		d.foldValues = true
	}
}

// WithIgnoredColumns excludes columns from the comparison entirely. Each
// entry is a column name, a glob ("dt_*") or an anchored regular expression
// ("^tmp_\w+$"). When any entry is not a valid pattern every entry is taken
// as a plain column name.
func WithIgnoredColumns(columns ...string) Option {
	return func(d *differ) {
		d.ignoreColumns = append(d.ignoreColumns, columns...)
	}
}
