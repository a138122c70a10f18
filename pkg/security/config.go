package security

import (
	"log/slog"

	dsig "github.com/russellhaering/goxmldsig"
)

type options struct {
	canonicalizer dsig.Canonicalizer
	logger        *slog.Logger
}

// Option configures a Signer or a Verifier
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{
		canonicalizer: DefaultCanonicalizer(),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithCanonicalizer replaces the exclusive c14n implementation. Both sides of
// an exchange must produce identical output for the same element.
func WithCanonicalizer(c dsig.Canonicalizer) Option {
	return func(o *options) {
		if c != nil {
			o.canonicalizer = c
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
