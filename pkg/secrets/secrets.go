package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// Engine encrypts and decrypts single values with AES-256-GCM.
// It is safe for concurrent use.
type Engine struct {
	mu      sync.RWMutex
	enclave *memguard.Enclave
}

// KeySource provides named local secrets. keyvault.Vault satisfies it.
type KeySource interface {
	Get(name string) (string, error)
}

// NewEngine creates an engine from a 32-byte master key.
// The master key slice is not retained; the derived working key is sealed in a
// memguard enclave.
func NewEngine(masterKey []byte) (*Engine, error) {
	key, err := deriveKey(masterKey)
	if err != nil {
		return nil, err
	}

	// NewEnclave wipes key after sealing it.
	return &Engine{enclave: memguard.NewEnclave(key)}, nil
}

// FromVault creates an engine whose master key is derived from the password
// stored under name in the key vault.
func FromVault(src KeySource, name string) (*Engine, error) {
	password, err := src.Get(name)
	if err != nil {
		return nil, err
	}

	master := KeyFromPassword(password, ApplicationSalt)
	defer clearBytes(master)

	return NewEngine(master)
}

// GenerateIV returns a fresh random IV. See the package-level GenerateIV.
func (e *Engine) GenerateIV() ([]byte, error) {
	return GenerateIV()
}

// Encrypt seals plaintext under iv and returns base64(ciphertext||tag).
func (e *Engine) Encrypt(iv []byte, plaintext string) (string, error) {
	if len(iv) != IVSize {
		return "", errors.Join(ErrEncryptionFailed, ErrInvalidIV)
	}

	var out []byte
	err := e.withAEAD(func(aead cipher.AEAD) error {
		out = aead.Seal(nil, iv, []byte(plaintext), nil)
		return nil
	})
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens a value produced by Encrypt with the same iv.
// Any IV mismatch, malformed input or authentication failure yields ErrDecryptionFailed.
func (e *Engine) Decrypt(iv []byte, ciphertext string) (string, error) {
	if len(iv) != IVSize {
		return "", errors.Join(ErrDecryptionFailed, ErrInvalidIV)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	var plain []byte
	err = e.withAEAD(func(aead cipher.AEAD) error {
		if len(raw) < aead.Overhead() {
			return errors.New("ciphertext shorter than authentication tag")
		}
		var openErr error
		plain, openErr = aead.Open(nil, iv, raw, nil)
		return openErr
	})
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	return string(plain), nil
}

// Destroy releases the sealed working key. Further operations fail with
// ErrEngineDestroyed. Destroy is idempotent.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enclave = nil
}

// withAEAD opens the working key into locked memory for the duration of fn.
func (e *Engine) withAEAD(fn func(cipher.AEAD) error) error {
	e.mu.RLock()
	enclave := e.enclave
	e.mu.RUnlock()

	if enclave == nil {
		return ErrEngineDestroyed
	}

	buf, err := enclave.Open()
	if err != nil {
		return err
	}
	defer buf.Destroy()

	block, err := aes.NewCipher(buf.Bytes())
	if err != nil {
		return err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	return fn(aead)
}
