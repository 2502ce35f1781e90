// Package keyvault exposes the small set of named local secrets needed to
// bootstrap remote access: the document store URL and the master password of
// the document cipher.
//
// The application only reads and removes keys; provisioning happens outside
// of it (OS keychain UI, redis-cli, deployment tooling). Three backends are
// provided:
//
//   - Keyring: the OS secret service (macOS Keychain, Secret Service on Linux,
//     Windows Credential Manager) via github.com/zalando/go-keyring.
//   - Redis: a hash on a Redis server, for headless service machines.
//   - Memory: a fixed in-process map, for tests and embedding.
//
// Missing keys are reported with ErrKeyMissing:
//
//	url, err := vault.Get(keyvault.KeyMongoURL)
//	if errors.Is(err, keyvault.ErrKeyMissing) {
//	    // fall back to the setup flow
//	}
//
// OK reports whether every required key is present.
package keyvault
