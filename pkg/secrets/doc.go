// Package secrets implements the symmetric primitive used to protect secret
// fields of stored documents.
//
// An Engine encrypts a single string value under a caller-supplied
// initialization vector (IV) and returns a self-describing, base64-encoded
// value. Decryption requires the exact IV used at encryption time. The IV is
// generated once per document by the caller (see GenerateIV) and stored next to
// the ciphertext, encoded with EncodeIV.
//
// # Architecture
//
//  1. Key material: a 32-byte master key, either random (GenerateKey) or
//     derived from a master password with Argon2id (KeyFromPassword).
//  2. Key derivation: HKDF(SHA-256) with info "ppp-document-cipher-v1"
//     yields the working key. Errors are wrapped with ErrKeyDerivationFailed.
//  3. Key custody: the working key lives in a memguard enclave and is only
//     decrypted into locked memory for the duration of one operation.
//  4. Encryption / Decryption: AES-256-GCM with the IV as nonce. The
//     authentication tag makes any IV mismatch or tampering fail with
//     ErrDecryptionFailed.
//
// # Usage
//
//	import "github.com/dmitrymomot/ppp/pkg/secrets"
//
//	key, _ := secrets.GenerateKey()
//	engine, err := secrets.NewEngine(key)
//	if err != nil {
//	    // handle error
//	}
//	defer engine.Destroy()
//
//	iv, _ := engine.GenerateIV()
//	ct, err := engine.Encrypt(iv, "api-token")
//	plain, err := engine.Decrypt(iv, ct)
//
// Engines backed by the local key vault are created with FromVault.
//
// # Error Handling
//
// All public functions return errors that wrap a sentinel such as
// ErrDecryptionFailed or ErrInvalidIV. Use errors.Is to match against them.
// Plaintext and key material never appear in error messages.
package secrets
