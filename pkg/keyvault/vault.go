package keyvault

import "sync"

// Well-known key names.
const (
	KeyMongoURL       = "mongo-url"
	KeyMongoDatabase  = "mongo-database"
	KeyMasterPassword = "master-password"
)

// RequiredKeys must all be present for a regular (non-emergency) start.
var RequiredKeys = []string{KeyMongoURL, KeyMasterPassword}

// Vault provides read and remove access to named local secrets.
type Vault interface {
	// Has reports whether the key is present.
	Has(name string) bool
	// Get returns the key value or an error wrapping ErrKeyMissing.
	Get(name string) (string, error)
	// Remove deletes the key. Removing a missing key is not an error.
	Remove(name string) error
}

// OK reports whether all names (RequiredKeys when none given) are present.
func OK(v Vault, names ...string) bool {
	if v == nil {
		return false
	}
	if len(names) == 0 {
		names = RequiredKeys
	}
	for _, name := range names {
		if !v.Has(name) {
			return false
		}
	}
	return true
}

// Memory is a Vault over a fixed map. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	keys map[string]string
}

// NewMemory returns a vault holding a copy of keys.
func NewMemory(keys map[string]string) *Memory {
	m := &Memory{keys: make(map[string]string, len(keys))}
	for k, v := range keys {
		m.keys[k] = v
	}
	return m
}

func (m *Memory) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.keys[name]
	return ok && v != ""
}

func (m *Memory) Get(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.keys[name]
	if !ok || v == "" {
		return "", missing(name)
	}
	return v, nil
}

func (m *Memory) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, name)
	return nil
}
