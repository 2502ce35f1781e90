package keyvault_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/dmitrymomot/ppp/pkg/keyvault"
)

func TestMemory(t *testing.T) {
	t.Parallel()

	src := map[string]string{
		keyvault.KeyMongoURL:       "mongodb://localhost:27017",
		keyvault.KeyMasterPassword: "pw",
		"empty":                    "",
	}
	v := keyvault.NewMemory(src)
	src[keyvault.KeyMongoURL] = "mutated"

	assert.True(t, v.Has(keyvault.KeyMongoURL))
	assert.False(t, v.Has("empty"))
	assert.False(t, v.Has("absent"))

	got, err := v.Get(keyvault.KeyMongoURL)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017", got)

	_, err = v.Get("absent")
	require.ErrorIs(t, err, keyvault.ErrKeyMissing)

	assert.True(t, keyvault.OK(v))
	require.NoError(t, v.Remove(keyvault.KeyMongoURL))
	require.NoError(t, v.Remove(keyvault.KeyMongoURL))
	assert.False(t, keyvault.OK(v))
	assert.True(t, keyvault.OK(v, keyvault.KeyMasterPassword))
}

func TestOK_NilVault(t *testing.T) {
	t.Parallel()
	assert.False(t, keyvault.OK(nil))
}

// Not parallel: the keyring mock provider is process-global.
func TestKeyring(t *testing.T) {
	keyring.MockInit()

	v := keyvault.NewKeyring("ppp-test")
	require.NoError(t, keyring.Set("ppp-test", keyvault.KeyMasterPassword, "secret"))

	assert.True(t, v.Has(keyvault.KeyMasterPassword))
	assert.False(t, v.Has(keyvault.KeyMongoURL))

	got, err := v.Get(keyvault.KeyMasterPassword)
	require.NoError(t, err)
	assert.Equal(t, "secret", got)

	_, err = v.Get(keyvault.KeyMongoURL)
	require.ErrorIs(t, err, keyvault.ErrKeyMissing)

	require.NoError(t, v.Remove(keyvault.KeyMasterPassword))
	require.NoError(t, v.Remove(keyvault.KeyMasterPassword))
	assert.False(t, v.Has(keyvault.KeyMasterPassword))
}

func TestConnectRedis_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := keyvault.ConnectRedis(context.Background(), keyvault.RedisConfig{
		ConnectionURL:  "not-a-url",
		ConnectTimeout: time.Second,
	})
	require.ErrorIs(t, err, keyvault.ErrFailedToParseRedisURL)
}

func TestConnectRedis_NotReady(t *testing.T) {
	t.Parallel()

	_, err := keyvault.ConnectRedis(context.Background(), keyvault.RedisConfig{
		ConnectionURL:  "redis://127.0.0.1:1/0",
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: 2 * time.Second,
	})
	require.ErrorIs(t, err, keyvault.ErrRedisNotReady)
}

func TestConnectRedis_NoWaitAfterLastAttempt(t *testing.T) {
	t.Parallel()

	start := time.Now()
	_, err := keyvault.ConnectRedis(context.Background(), keyvault.RedisConfig{
		ConnectionURL:  "redis://127.0.0.1:1/0",
		RetryAttempts:  1,
		RetryInterval:  5 * time.Second,
		ConnectTimeout: 10 * time.Second,
	})
	require.ErrorIs(t, err, keyvault.ErrRedisNotReady)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRedis_UnavailableServer(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	v := keyvault.NewRedis(client, "", time.Second)
	defer v.Close()

	assert.False(t, v.Has(keyvault.KeyMongoURL))
	_, err := v.Get(keyvault.KeyMongoURL)
	require.ErrorIs(t, err, keyvault.ErrVaultUnavailable)
	require.ErrorIs(t, v.Remove(keyvault.KeyMongoURL), keyvault.ErrVaultUnavailable)
}
