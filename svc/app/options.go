package app

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/ppp/pkg/document"
	"github.com/dmitrymomot/ppp/pkg/mongo"
	"github.com/dmitrymomot/ppp/pkg/registry"
)

// Storage is the document store the app reads its state from.
// *mongo.Store satisfies it.
type Storage interface {
	Find(ctx context.Context, collection string, filter any, opts ...options.Lister[options.FindOptions]) ([]document.Document, error)
	FindOne(ctx context.Context, collection string, filter any, opts ...options.Lister[options.FindOneOptions]) (document.Document, error)
	Close(ctx context.Context) error
}

// Connector opens the document store.
type Connector func(ctx context.Context, cfg mongo.Config, opts ...mongo.StoreOption) (Storage, error)

// ConnectMongo is the default Connector.
func ConnectMongo(ctx context.Context, cfg mongo.Config, opts ...mongo.StoreOption) (Storage, error) {
	db, err := mongo.NewWithDatabase(ctx, cfg, "")
	if err != nil {
		return nil, err
	}
	return mongo.NewStore(db, opts...), nil
}

// Option configures Start.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithConnector replaces the document store connector.
func WithConnector(c Connector) Option {
	return func(a *App) {
		if c != nil {
			a.connect = c
		}
	}
}

// WithRegistryOptions passes options to the connection registry.
func WithRegistryOptions(opts ...registry.Option) Option {
	return func(a *App) {
		a.registryOpts = append(a.registryOpts, opts...)
	}
}

// WithMetrics registers the app's collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(a *App) {
		a.registryOpts = append(a.registryOpts, registry.WithMetrics(reg))
	}
}
