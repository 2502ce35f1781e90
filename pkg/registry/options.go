package registry

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/ppp/pkg/pusher"
	"github.com/dmitrymomot/ppp/pkg/trader"
)

// PubSubConn is a live pub/sub connection.
type PubSubConn interface {
	Subscribe(ctx context.Context, channel string) error
	Close() error
}

// PubSubDialer opens a pub/sub connection for an application key.
type PubSubDialer func(ctx context.Context, key string, opts pusher.Options) (PubSubConn, error)

// DialPusher is the default PubSubDialer.
func DialPusher(ctx context.Context, key string, opts pusher.Options) (PubSubConn, error) {
	c, err := pusher.Dial(ctx, key, opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Resolver turns a caller-supplied location into a backend factory.
type Resolver interface {
	Resolve(ctx context.Context, location string) (trader.Factory, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, location string) (trader.Factory, error)

func (f ResolverFunc) Resolve(ctx context.Context, location string) (trader.Factory, error) {
	return f(ctx, location)
}

// PluginResolver loads custom backends as Go plugins.
var PluginResolver Resolver = ResolverFunc(func(_ context.Context, location string) (trader.Factory, error) {
	return trader.LoadPlugin(location)
})

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithResolver sets the resolver used for the custom backend type.
func WithResolver(res Resolver) Option {
	return func(r *Registry) {
		if res != nil {
			r.resolver = res
		}
	}
}

// WithPubSubDialer replaces the pub/sub dialer.
func WithPubSubDialer(dial PubSubDialer) Option {
	return func(r *Registry) {
		if dial != nil {
			r.dial = dial
		}
	}
}

// WithPubSubHost overrides the pub/sub endpoint host.
func WithPubSubHost(host string) Option {
	return func(r *Registry) {
		r.pubSubHost = host
	}
}

// WithConstructTimeout bounds a single connection construction. Values
// below or equal to zero are ignored.
func WithConstructTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithFactories replaces the type table. The default is trader.Builtins().
func WithFactories(factories map[trader.Type]trader.Factory) Option {
	return func(r *Registry) {
		r.factories = make(map[trader.Type]trader.Factory, len(factories))
		for typ, f := range factories {
			if f != nil {
				r.factories[typ] = f
			}
		}
	}
}

// WithMetrics registers the registry collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Registry) {
		r.metrics = newMetrics(reg)
	}
}
