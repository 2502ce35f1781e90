package secrets

import "errors"

var (
	// Key errors
	ErrInvalidKey          = errors.New("invalid key: must be 32 bytes")
	ErrKeyDerivationFailed = errors.New("key derivation failed")
	ErrEngineDestroyed     = errors.New("crypto engine destroyed")

	// IV errors
	ErrInvalidIV = errors.New("invalid initialization vector")

	// Encryption/decryption errors
	ErrEncryptionFailed = errors.New("encryption failed")
	ErrDecryptionFailed = errors.New("decryption failed")
)
