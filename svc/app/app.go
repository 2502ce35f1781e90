package app

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/ppp/pkg/document"
	"github.com/dmitrymomot/ppp/pkg/keyvault"
	"github.com/dmitrymomot/ppp/pkg/logger"
	"github.com/dmitrymomot/ppp/pkg/mongo"
	"github.com/dmitrymomot/ppp/pkg/registry"
	"github.com/dmitrymomot/ppp/pkg/secrets"
)

// Mode is the application start mode.
type Mode string

const (
	ModeNormal    Mode = "normal"
	ModeEmergency Mode = "emergency"
)

// Collections and documents read at start.
const (
	CollectionWorkspaces = "workspaces"
	CollectionExtensions = "extensions"
	CollectionApp        = "app"
	SettingsID           = "@settings"
)

// App holds the started application.
type App struct {
	cfg     Config
	vault   keyvault.Vault
	logger  *slog.Logger
	connect Connector

	registryOpts []registry.Option

	mode     Mode
	engine   *secrets.Engine
	cipher   *document.Cipher
	registry *registry.Registry
	store    Storage

	workspaces []document.Document
	extensions []document.Document
	settings   document.Document

	closeOnce sync.Once
	closeErr  error
}

// Start brings the application up. It never fails because of missing or
// rejected vault credentials: those lead to ModeEmergency. A store that
// cannot be reached for other reasons yields ErrNoServiceConnection.
func Start(ctx context.Context, cfg Config, vault keyvault.Vault, opts ...Option) (*App, error) {
	a := &App{
		cfg:     cfg,
		vault:   vault,
		logger:  logger.Discard(),
		connect: ConnectMongo,
		mode:    ModeEmergency,
	}
	for _, opt := range opts {
		opt(a)
	}

	if !keyvault.OK(vault) {
		a.logger.WarnContext(ctx, "key vault is incomplete", logger.Mode(string(ModeEmergency)))
		return a, nil
	}

	engine, err := secrets.FromVault(vault, keyvault.KeyMasterPassword)
	if err != nil {
		return nil, err
	}
	a.engine = engine
	a.cipher = document.NewCipher(engine, document.WithLogger(a.logger))
	a.registry = registry.New(append([]registry.Option{registry.WithLogger(a.logger)}, a.registryOpts...)...)

	store, err := a.connect(ctx, a.mongoConfig(),
		mongo.WithTransform(a.cipher.Transformation()),
		mongo.WithSealedFields(cfg.SealedFields...),
		mongo.WithStoreLogger(a.logger),
	)
	if err != nil {
		a.teardown(ctx)

		if mongo.IsAuthError(err) {
			a.logger.WarnContext(ctx, "document store rejected credentials", logger.Error(err), logger.Mode(string(ModeEmergency)))
			if rmErr := vault.Remove(keyvault.KeyMongoURL); rmErr != nil {
				a.logger.ErrorContext(ctx, "failed to remove rejected credentials", logger.Error(rmErr))
			}
			return a, nil
		}
		return nil, errors.Join(ErrNoServiceConnection, err)
	}
	a.store = store

	if err := a.load(ctx); err != nil {
		a.teardown(ctx)
		return nil, errors.Join(ErrLoadFailed, err)
	}

	a.mode = ModeNormal
	a.logger.InfoContext(ctx, "application started",
		logger.Mode(string(a.mode)),
		slog.Int("workspaces", len(a.workspaces)),
		slog.Int("extensions", len(a.extensions)),
	)
	return a, nil
}

func (a *App) mongoConfig() mongo.Config {
	cfg := a.cfg.Mongo
	cfg.ConnectionURL, _ = a.vault.Get(keyvault.KeyMongoURL)
	if db, err := a.vault.Get(keyvault.KeyMongoDatabase); err == nil {
		cfg.Database = db
	}
	return cfg
}

// load reads workspaces, extensions and settings concurrently.
func (a *App) load(ctx context.Context) error {
	if a.cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.LoadTimeout)
		defer cancel()
	}

	notRemoved := bson.D{{Key: "removed", Value: bson.D{{Key: "$ne", Value: true}}}}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := a.store.Find(ctx, CollectionWorkspaces, notRemoved,
			options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}, {Key: "name", Value: 1}}))
		a.workspaces = docs
		return err
	})
	g.Go(func() error {
		docs, err := a.store.Find(ctx, CollectionExtensions, notRemoved)
		a.extensions = docs
		return err
	})
	g.Go(func() error {
		doc, err := a.store.FindOne(ctx, CollectionApp, bson.D{{Key: "_id", Value: SettingsID}})
		if errors.Is(err, mongo.ErrNotFound) {
			doc, err = document.Document{}, nil
		}
		a.settings = doc
		return err
	})
	return g.Wait()
}

// Mode returns the start mode.
func (a *App) Mode() Mode { return a.mode }

// Cipher returns the document cipher, or nil in emergency mode.
func (a *App) Cipher() *document.Cipher { return a.cipher }

// Registry returns the connection registry, or nil in emergency mode.
func (a *App) Registry() *registry.Registry { return a.registry }

// Storage returns the document store, or nil in emergency mode.
func (a *App) Storage() Storage { return a.store }

// Workspaces returns the loaded workspaces (identity and name only).
func (a *App) Workspaces() []document.Document { return slices.Clone(a.workspaces) }

// Extensions returns the loaded extensions.
func (a *App) Extensions() []document.Document { return slices.Clone(a.extensions) }

// Settings returns a copy of the application settings document.
func (a *App) Settings() document.Document { return a.settings.Clone() }

// DarkMode returns the stored color scheme preference.
func (a *App) DarkMode() DarkMode { return darkModeFrom(a.settings) }

// Encrypt seals a document for storage.
func (a *App) Encrypt(doc document.Document) (document.Document, error) {
	if a.cipher == nil {
		return nil, ErrEmergencyMode
	}
	return a.cipher.Encrypt(doc)
}

// Decrypt opens a stored document.
func (a *App) Decrypt(doc document.Document) (document.Document, error) {
	if a.cipher == nil {
		return nil, ErrEmergencyMode
	}
	return a.cipher.Decrypt(doc)
}

// Healthcheck reports whether the document store answers. It always passes
// in emergency mode.
func (a *App) Healthcheck(ctx context.Context) error {
	hc, ok := a.store.(interface{ Healthcheck(context.Context) error })
	if !ok {
		return nil
	}
	return hc.Healthcheck(ctx)
}

// Close closes the registry, disconnects the store and destroys the engine.
// It is idempotent.
func (a *App) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		a.closeErr = a.teardown(ctx)
	})
	return a.closeErr
}

func (a *App) teardown(ctx context.Context) error {
	var errs []error
	if a.registry != nil {
		errs = append(errs, a.registry.Close())
		a.registry = nil
	}
	if a.store != nil {
		errs = append(errs, a.store.Close(ctx))
		a.store = nil
	}
	if a.engine != nil {
		a.engine.Destroy()
		a.engine = nil
	}
	a.cipher = nil
	return errors.Join(errs...)
}
