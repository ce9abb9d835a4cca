package differ

// Option is a functional option for configuring a Differ.
type Option func(*differ)

// WithIgnoredFields skips comparison of the named fields:
// "type", "default", "variadic", "order", "return_type".
func WithIgnoredFields(fields ...string) Option {
	return func(d *differ) {
		for _, field := range fields {
			d.ignoreFields[field] = true
		}
	}
}

// WithTypeAliases enables or disables folding common cross-language type
// spellings (boolean/bool, string/str, void/None) before comparing types.
func WithTypeAliases(enabled bool) Option {
	return func(d *differ) {
		d.typeAliases = enabled
	}
}
