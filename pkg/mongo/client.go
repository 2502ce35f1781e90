package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// authenticationFailed is the server error code for rejected credentials.
const authenticationFailed = 18

// New connects to the mongo server and pings it, retrying up to
// cfg.RetryAttempts times. The last attempt's error is joined to
// ErrFailedToConnectToMongo.
func New(ctx context.Context, cfg Config) (*mongo.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrMissingConnectionURL
	}

	var lastErr error
	for attempt := range max(cfg.RetryAttempts, 1) {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToConnectToMongo, ctx.Err(), lastErr)
			case <-time.After(cfg.RetryInterval):
			}
		}

		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetServerSelectionTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime).
				SetRetryReads(cfg.RetryReads),
		)
		if err != nil {
			lastErr = err
			continue
		}

		if err := client.Ping(ctx, nil); err != nil {
			lastErr = err
			_ = client.Disconnect(context.WithoutCancel(ctx))
			if IsAuthError(err) {
				break
			}
			continue
		}
		return client, nil
	}

	return nil, errors.Join(ErrFailedToConnectToMongo, lastErr)
}

// NewWithDatabase connects and returns cfg.Database, or database when it is
// not empty.
func NewWithDatabase(ctx context.Context, cfg Config, database string) (*mongo.Database, error) {
	client, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if database == "" {
		database = cfg.Database
	}
	return client.Database(database), nil
}

// IsAuthError reports whether err means the server rejected the credentials.
// Retrying such an error with the same URL is pointless.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(authenticationFailed) {
		return true
	}

	// Handshake failures surface as connection errors wrapping the driver's
	// auth error, which has no exported type.
	msg := err.Error()
	return strings.Contains(msg, "auth error") || strings.Contains(msg, "AuthenticationFailed")
}
