package normalizer

import (
	"github.com/agentstation/apidrift/pkg/errors"
)

type options struct {
	receivers      map[string]bool
	maxDescription int
	maxCodeBlock   int
}

func defaultOptions() *options {
	return &options{
		receivers:    map[string]bool{"self": true, "cls": true, "this": true},
		maxCodeBlock: 64 * 1024,
	}
}

// Option configures a Normalizer.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithReceiverNames sets the leading parameter names that are treated as
// an implicit receiver and dropped from doc signatures and untyped code parameters.
func WithReceiverNames(names ...string) Option {
	return func(o *options) error {
		o.receivers = make(map[string]bool, len(names))
		for _, n := range names {
			o.receivers[n] = true
		}
		return nil
	}
}

// WithMaxDescription truncates descriptions to n runes. Zero disables truncation.
func WithMaxDescription(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return errors.NewValidationError("max_description", n, "cannot be negative")
		}
		o.maxDescription = n
		return nil
	}
}

// WithMaxCodeBlock bounds how many bytes of a code block are scanned for a
// signature. Zero disables the bound.
func WithMaxCodeBlock(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return errors.NewValidationError("max_code_block", n, "cannot be negative")
		}
		o.maxCodeBlock = n
		return nil
	}
}
