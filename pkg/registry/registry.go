package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/ppp/pkg/document"
	"github.com/dmitrymomot/ppp/pkg/pusher"
	"github.com/dmitrymomot/ppp/pkg/trader"
)

// Connection is anything the registry can hold.
type Connection interface {
	Close() error
}

// PubSubChannels are subscribed once on every new pub/sub connection.
var PubSubChannels = []string{"telegram", "ppp"}

// FieldCluster selects the pub/sub cluster.
const FieldCluster = "cluster"

// DefaultConstructTimeout bounds one shared construction.
const DefaultConstructTimeout = 30 * time.Second

// Registry maps document identities to live connections.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]Connection
	closed bool

	fmu       sync.RWMutex
	factories map[trader.Type]trader.Factory

	group singleflight.Group

	resolver   Resolver
	dial       PubSubDialer
	pubSubHost string
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *metrics
}

// New creates an empty registry with the built-in backend types.
func New(opts ...Option) *Registry {
	r := &Registry{
		conns:     make(map[string]Connection),
		factories: trader.Builtins(),
		resolver:  PluginResolver,
		dial:      DialPusher,
		timeout:   DefaultConstructTimeout,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = newMetrics(nil)
	}
	return r
}

// Register adds a backend type. Existing types and the custom type cannot be
// replaced.
func (r *Registry) Register(typ trader.Type, f trader.Factory) error {
	if f == nil {
		return ErrNilFactory
	}

	r.fmu.Lock()
	defer r.fmu.Unlock()

	if _, ok := r.factories[typ]; ok || typ == trader.TypeCustom {
		return fmt.Errorf("%w: %s", ErrTypeRegistered, typ)
	}
	r.factories[typ] = f
	return nil
}

// Types returns the registered backend types in sorted order.
func (r *Registry) Types() []trader.Type {
	r.fmu.RLock()
	defer r.fmu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// GetOrCreateConnection returns the trader cached for doc's identity or
// builds one from doc. A nil doc yields a nil trader and no error.
func (r *Registry) GetOrCreateConnection(ctx context.Context, doc document.Document) (trader.Trader, error) {
	return getOrCreate(ctx, r, doc, func(ctx context.Context) (trader.Trader, error) {
		factory, err := r.factory(ctx, doc)
		if err != nil {
			return nil, err
		}
		return factory(ctx, doc)
	})
}

// GetOrCreatePubSubConnection returns the pub/sub connection cached for
// doc's identity or dials one with doc's key and cluster. Channel
// subscriptions happen on construction only.
func (r *Registry) GetOrCreatePubSubConnection(ctx context.Context, doc document.Document) (PubSubConn, error) {
	return getOrCreate(ctx, r, doc, func(ctx context.Context) (PubSubConn, error) {
		conn, err := r.dial(ctx, doc.String(document.FieldKey), pusher.Options{
			Cluster:            doc.String(FieldCluster),
			Host:               r.pubSubHost,
			EnabledTransports:  []string{pusher.TransportWS, pusher.TransportWSS},
			DisabledTransports: []string{pusher.TransportXHRStreaming, pusher.TransportXHRPolling, pusher.TransportSockJS},
			Logger:             r.logger,
		})
		if err != nil {
			return nil, err
		}

		for _, ch := range PubSubChannels {
			if err := conn.Subscribe(ctx, ch); err != nil {
				return nil, errors.Join(fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, ch, err), conn.Close())
			}
		}
		return conn, nil
	})
}

// Lookup returns the cached connection for id.
func (r *Registry) Lookup(id string) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	return c, ok
}

// Evict removes and closes the connection cached for id.
func (r *Registry) Evict(id string) error {
	r.mu.Lock()
	c, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
		r.metrics.connections.Set(float64(len(r.conns)))
	}
	r.mu.Unlock()

	if !ok {
		return nil
	}
	r.logger.Debug("connection evicted", slog.String("document_id", id))
	return c.Close()
}

// Len returns the number of cached connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Close closes every cached connection. The registry refuses new
// constructions afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	conns := r.conns
	r.conns = make(map[string]Connection)
	r.metrics.connections.Set(0)
	r.mu.Unlock()

	var errs []error
	for _, id := range slices.Sorted(maps.Keys(conns)) {
		if err := conns[id].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) factory(ctx context.Context, doc document.Document) (trader.Factory, error) {
	typ := trader.Type(doc.Type())

	if typ == trader.TypeCustom {
		f, err := r.resolver.Resolve(ctx, doc.String(document.FieldURL))
		if err != nil {
			return nil, errors.Join(ErrBackendResolution, err)
		}
		return f, nil
	}

	r.fmu.RLock()
	f, ok := r.factories[typ]
	r.fmu.RUnlock()
	if !ok {
		return nil, errors.Join(ErrBackendResolution, fmt.Errorf("%w: %q", ErrUnknownType, typ))
	}
	return f, nil
}

// getOrCreate holds the check, single-flight construction and insert shared
// by both connection kinds.
func getOrCreate[T Connection](ctx context.Context, r *Registry, doc document.Document, build func(context.Context) (T, error)) (T, error) {
	var zero T
	if doc == nil {
		return zero, nil
	}

	id := doc.ID()
	if id == "" {
		return zero, ErrMissingIdentity
	}

	if c, ok := r.Lookup(id); ok {
		return as[T](c)
	}

	// The construction outlives the caller that started it; each caller only
	// waits on its own context.
	ch := r.group.DoChan(id, func() (any, error) {
		r.mu.RLock()
		c, ok := r.conns[id]
		closed := r.closed
		r.mu.RUnlock()
		if ok {
			return c, nil
		}
		if closed {
			return nil, ErrClosed
		}

		log := r.logger.With(slog.String("document_id", id), slog.String("backend_type", doc.Type()))

		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		conn, err := build(bctx)
		r.metrics.constructed(metricType(doc), err)
		if err != nil {
			log.Warn("connection construction failed", slog.String("error", err.Error()))
			return nil, err
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return nil, errors.Join(ErrClosed, conn.Close())
		}
		r.conns[id] = conn
		r.metrics.connections.Set(float64(len(r.conns)))
		r.mu.Unlock()

		log.Debug("connection constructed")
		return conn, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res = <-ch:
	}
	v, err := res.Val, res.Err
	if err != nil {
		return zero, err
	}
	return as[T](v)
}

func as[T Connection](v any) (T, error) {
	c, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: have %T", ErrKindMismatch, v)
	}
	return c, nil
}

func metricType(doc document.Document) string {
	if t := doc.Type(); t != "" {
		return t
	}
	return "unknown"
}
