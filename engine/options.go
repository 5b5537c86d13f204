package engine

import (
	"go.uber.org/zap"

	"github.com/bitfsorg/libmint-go/payrail"
	"github.com/bitfsorg/libmint-go/store"
)

// Option configures an engine at construction.
type Option func(*options)

type options struct {
	name   string
	store  store.Store
	rail   payrail.Rail
	logger *zap.Logger
	params *Params
}

// WithName sets the name the engine persists under. Defaults to the variant.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithStore persists a snapshot after every committed call.
func WithStore(s store.Store) Option {
	return func(o *options) { o.store = s }
}

// WithRail sets the payment rail used by Withdraw.
func WithRail(r payrail.Rail) Option {
	return func(o *options) { o.rail = r }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithParams overrides the variant's default supply cap and limits.
func WithParams(p Params) Option {
	return func(o *options) { o.params = &p }
}

func buildOptions(variant string, opts []Option) options {
	o := options{name: variant}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.params == nil {
		p := defaultParams(variant)
		o.params = &p
	}
	return o
}
