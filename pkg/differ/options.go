package differ

// Option is a functional option for configuring Differ.
type Option func(*differ)

// WithIgnoredFields sets fields to ignore during comparison. Field names
// are the record keys: value, href, type, compatibility.
func WithIgnoredFields(fields ...string) Option {
	return func(d *differ) {
		for _, field := range fields {
			d.ignoreFields[field] = true
		}
	}
}

// WithTruncation limits how many characters of a grammar string a
// FieldChange carries. 0 keeps them whole.
func WithTruncation(n int) Option {
	return func(d *differ) {
		d.truncate = n
	}
}
