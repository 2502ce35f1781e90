package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the size of master and working keys (AES-256).
	KeySize = 32

	// IVSize is the GCM nonce size used as the per-document IV.
	IVSize = 12

	// hkdfInfo separates the document cipher key from other uses of the master key.
	hkdfInfo = "ppp-document-cipher-v1"

	// Argon2id parameters for password-derived master keys.
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
)

// ApplicationSalt is the salt used to derive the master key from the vault's
// master password. It is fixed so that every installation sharing the password
// can read the same stored documents.
var ApplicationSalt = []byte("ppp/document-cipher/salt")

// GenerateKey creates a new random 32-byte master key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// KeyFromPassword derives a 32-byte master key from a password with Argon2id.
func KeyFromPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, KeySize)
}

// GenerateIV returns IVSize random bytes from the system CSPRNG.
func GenerateIV() ([]byte, error) {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return iv, nil
}

// EncodeIV returns the string form stored in a document's iv field.
func EncodeIV(iv []byte) string {
	return hex.EncodeToString(iv)
}

// DecodeIV parses the string form produced by EncodeIV.
func DecodeIV(s string) ([]byte, error) {
	iv, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Join(ErrInvalidIV, err)
	}
	if len(iv) != IVSize {
		return nil, ErrInvalidIV
	}
	return iv, nil
}

// deriveKey expands the master key into the working key with HKDF.
// The caller must clear the returned slice.
func deriveKey(master []byte) ([]byte, error) {
	if len(master) != KeySize {
		return nil, ErrInvalidKey
	}

	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(hkdfInfo)), derived); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return derived, nil
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
