package formstate

import (
	"io"
	"log/slog"

	"github.com/dshills/formsync/internal/identity"
)

// config holds Store settings.
type config struct {
	defaults         map[string]any
	validator        Validator
	keyer            *identity.Keyer
	logger           *slog.Logger
	mode             Mode
	reValidateMode   Mode
	shouldUnregister bool
	interest         Interest
}

func defaultConfig() config {
	return config{
		mode:           OnSubmit,
		reValidateMode: OnChange,
	}
}

// Option configures a Store.
type Option func(*config)

// WithDefaultValues sets the default values. The map is copied.
func WithDefaultValues(values map[string]any) Option {
	return func(c *config) {
		c.defaults = values
	}
}

// WithValidator sets the validation collaborator.
func WithValidator(v Validator) Option {
	return func(c *config) {
		c.validator = v
	}
}

// WithKeyer sets the keyer used for array entries.
func WithKeyer(k *identity.Keyer) Option {
	return func(c *config) {
		c.keyer = k
	}
}

// WithKeyGenerator builds the keyer from a key generator.
func WithKeyGenerator(gen identity.Generator) Option {
	return func(c *config) {
		c.keyer = identity.NewKeyer(gen)
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMode sets when input validates before the first submit.
func WithMode(m Mode) Option {
	return func(c *config) {
		c.mode = m
	}
}

// WithReValidateMode sets when input validates after a submit.
func WithReValidateMode(m Mode) Option {
	return func(c *config) {
		c.reValidateMode = m
	}
}

// WithShouldUnregister removes a field's value and state when its last
// registration is released.
func WithShouldUnregister(v bool) Option {
	return func(c *config) {
		c.shouldUnregister = v
	}
}

// WithInterest declares tracking interest up front.
func WithInterest(in Interest) Option {
	return func(c *config) {
		c.interest = c.interest.Merge(in)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
