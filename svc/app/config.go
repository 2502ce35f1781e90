package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/ppp/pkg/config"
	"github.com/dmitrymomot/ppp/pkg/keyvault"
	"github.com/dmitrymomot/ppp/pkg/logger"
	"github.com/dmitrymomot/ppp/pkg/mongo"
	"github.com/dmitrymomot/ppp/pkg/opsserver"
)

// Key vault backends.
const (
	VaultKeyring = "keyring"
	VaultRedis   = "redis"
)

// Config is read from PPP_-prefixed environment variables.
type Config struct {
	Name           string        `env:"APP_NAME" envDefault:"ppp"`
	Env            string        `env:"ENV" envDefault:"development"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	Vault          string        `env:"KEYVAULT" envDefault:"keyring"`
	KeyringService string        `env:"KEYRING_SERVICE" envDefault:"ppp"`
	SealedFields   []string      `env:"SEALED_FIELDS" envSeparator:"," envDefault:"broker"`
	LoadTimeout    time.Duration `env:"LOAD_TIMEOUT" envDefault:"30s"`
	Metrics        bool          `env:"METRICS" envDefault:"true"`

	Redis keyvault.RedisConfig
	Mongo mongo.Config
	Ops   opsserver.Config
}

// LoadConfig reads Config from the environment.
func LoadConfig(opts ...config.Option) (Config, error) {
	var cfg Config
	if err := config.Load(&cfg, opts...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Logger builds the logger described by cfg.
func (c Config) Logger(opts ...logger.Option) *slog.Logger {
	return logger.New(append([]logger.Option{
		logger.WithEnvironment(c.Env, c.Name),
		logger.WithLevelName(c.LogLevel),
		logger.WithRedactedKeys(keyvault.KeyMongoURL),
	}, opts...)...)
}

// OpenVault opens the configured key vault. The returned close function
// releases its resources.
func OpenVault(ctx context.Context, cfg Config) (keyvault.Vault, func() error, error) {
	switch cfg.Vault {
	case VaultKeyring, "":
		return keyvault.NewKeyring(cfg.KeyringService), func() error { return nil }, nil
	case VaultRedis:
		v, err := keyvault.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return v, v.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownVault, cfg.Vault)
	}
}
