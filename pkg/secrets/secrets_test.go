package secrets_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ppp/pkg/secrets"
)

func newEngine(t *testing.T) *secrets.Engine {
	t.Helper()
	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	engine, err := secrets.NewEngine(key)
	require.NoError(t, err)
	t.Cleanup(engine.Destroy)
	return engine
}

func TestEngine_EncryptDecrypt(t *testing.T) {
	t.Parallel()
	engine := newEngine(t)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"empty string", ""},
		{"api token", "t.3JdkqW0c9bR_x"},
		{"json", `{"client_id":"abc123","client_secret":"xyz789"}`},
		{"unicode", "ключ 世界 🌍"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			iv, err := engine.GenerateIV()
			require.NoError(t, err)

			ct, err := engine.Encrypt(iv, tt.plaintext)
			require.NoError(t, err)
			if tt.plaintext != "" {
				assert.NotEqual(t, tt.plaintext, ct)
			}

			plain, err := engine.Decrypt(iv, ct)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, plain)
		})
	}
}

func TestEngine_DecryptFailures(t *testing.T) {
	t.Parallel()
	engine := newEngine(t)

	iv, err := engine.GenerateIV()
	require.NoError(t, err)
	ct, err := engine.Encrypt(iv, "PLAINTEXT")
	require.NoError(t, err)

	otherIV, err := engine.GenerateIV()
	require.NoError(t, err)

	tests := []struct {
		name string
		iv   []byte
		ct   string
	}{
		{"wrong iv", otherIV, ct},
		{"short iv", iv[:4], ct},
		{"not base64", iv, "%%%"},
		{"shorter than tag", iv, "AAAA"},
		{"tampered", iv, ct[:len(ct)-4] + "AAA="},
		{"plain value", iv, "PLAINTEXT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := engine.Decrypt(tt.iv, tt.ct)
			require.Error(t, err)
			assert.True(t, errors.Is(err, secrets.ErrDecryptionFailed))
		})
	}
}

func TestEngine_DifferentKeys(t *testing.T) {
	t.Parallel()
	a := newEngine(t)
	b := newEngine(t)

	iv, err := secrets.GenerateIV()
	require.NoError(t, err)

	ct, err := a.Encrypt(iv, "secret")
	require.NoError(t, err)

	_, err = b.Decrypt(iv, ct)
	require.ErrorIs(t, err, secrets.ErrDecryptionFailed)
}

func TestEngine_Destroy(t *testing.T) {
	t.Parallel()
	engine := newEngine(t)
	iv, err := engine.GenerateIV()
	require.NoError(t, err)

	engine.Destroy()
	engine.Destroy()

	_, err = engine.Encrypt(iv, "x")
	require.ErrorIs(t, err, secrets.ErrEngineDestroyed)
	_, err = engine.Decrypt(iv, "x")
	require.ErrorIs(t, err, secrets.ErrDecryptionFailed)
}

func TestNewEngine_InvalidKey(t *testing.T) {
	t.Parallel()
	for _, size := range []int{0, 16, 31, 33, 64} {
		_, err := secrets.NewEngine(make([]byte, size))
		require.ErrorIs(t, err, secrets.ErrInvalidKey)
	}
}

func TestIVEncoding(t *testing.T) {
	t.Parallel()
	iv, err := secrets.GenerateIV()
	require.NoError(t, err)
	require.Len(t, iv, secrets.IVSize)

	decoded, err := secrets.DecodeIV(secrets.EncodeIV(iv))
	require.NoError(t, err)
	assert.Equal(t, iv, decoded)

	_, err = secrets.DecodeIV("zz")
	require.ErrorIs(t, err, secrets.ErrInvalidIV)
	_, err = secrets.DecodeIV("abcd")
	require.ErrorIs(t, err, secrets.ErrInvalidIV)
}

type mapSource map[string]string

var errMissing = errors.New("missing")

func (m mapSource) Get(name string) (string, error) {
	v, ok := m[name]
	if !ok {
		return "", errMissing
	}
	return v, nil
}

func TestFromVault(t *testing.T) {
	t.Parallel()
	src := mapSource{"master-password": "correct horse battery staple"}

	a, err := secrets.FromVault(src, "master-password")
	require.NoError(t, err)
	defer a.Destroy()
	b, err := secrets.FromVault(src, "master-password")
	require.NoError(t, err)
	defer b.Destroy()

	iv, err := secrets.GenerateIV()
	require.NoError(t, err)
	ct, err := a.Encrypt(iv, "token")
	require.NoError(t, err)

	plain, err := b.Decrypt(iv, ct)
	require.NoError(t, err)
	assert.Equal(t, "token", plain)

	_, err = secrets.FromVault(mapSource{}, "master-password")
	require.ErrorIs(t, err, errMissing)
}
