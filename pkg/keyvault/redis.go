package keyvault

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisHash is the hash holding vault keys on the Redis server.
const DefaultRedisHash = "ppp:keyvault"

// RedisConfig configures the Redis-backed vault.
type RedisConfig struct {
	ConnectionURL  string        `env:"KEYVAULT_REDIS_URL" envDefault:"redis://localhost:6379/0"` // redis://:password@host:6379/0
	Hash           string        `env:"KEYVAULT_REDIS_HASH" envDefault:"ppp:keyvault"`
	RetryAttempts  int           `env:"KEYVAULT_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"KEYVAULT_REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"KEYVAULT_REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	RequestTimeout time.Duration `env:"KEYVAULT_REDIS_REQUEST_TIMEOUT" envDefault:"5s"`
}

// Redis is a Vault reading fields of one Redis hash.
type Redis struct {
	client  redis.UniversalClient
	hash    string
	timeout time.Duration
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, hash string, timeout time.Duration) *Redis {
	if hash == "" {
		hash = DefaultRedisHash
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Redis{client: client, hash: hash, timeout: timeout}
}

// ConnectRedis dials the server described by cfg, retrying while it is not
// ready, and returns a vault over it.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisURL, err)
	}

	var lastErr error
	for attempt := range max(cfg.RetryAttempts, 1) {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrRedisNotReady, ctx.Err(), lastErr)
			case <-time.After(cfg.RetryInterval):
			}
		}

		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return NewRedis(client, cfg.Hash, cfg.RequestTimeout), nil
		}
		_ = client.Close()
	}

	return nil, errors.Join(ErrRedisNotReady, lastErr)
}

func (r *Redis) Has(name string) bool {
	_, err := r.Get(name)
	return err == nil
}

func (r *Redis) Get(name string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	v, err := r.client.HGet(ctx, r.hash, name).Result()
	if errors.Is(err, redis.Nil) || (err == nil && v == "") {
		return "", missing(name)
	}
	if err != nil {
		return "", errors.Join(ErrVaultUnavailable, err)
	}
	return v, nil
}

func (r *Redis) Remove(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.HDel(ctx, r.hash, name).Err(); err != nil {
		return errors.Join(ErrVaultUnavailable, err)
	}
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
