package keyvault

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultService is the keyring service name keys are stored under.
const DefaultService = "ppp"

// Keyring is a Vault backed by the OS secret service.
type Keyring struct {
	service string
}

// NewKeyring returns a keyring vault for service (DefaultService when empty).
func NewKeyring(service string) *Keyring {
	if service == "" {
		service = DefaultService
	}
	return &Keyring{service: service}
}

func (k *Keyring) Has(name string) bool {
	v, err := keyring.Get(k.service, name)
	return err == nil && v != ""
}

func (k *Keyring) Get(name string) (string, error) {
	v, err := keyring.Get(k.service, name)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && v == "") {
		return "", missing(name)
	}
	if err != nil {
		return "", errors.Join(ErrVaultUnavailable, err)
	}
	return v, nil
}

func (k *Keyring) Remove(name string) error {
	err := keyring.Delete(k.service, name)
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return errors.Join(ErrVaultUnavailable, err)
}

func missing(name string) error {
	return fmt.Errorf("%w: %s", ErrKeyMissing, name)
}
