package registry

import "errors"

var (
	ErrBackendResolution = errors.New("registry: backend resolution failed")
	ErrUnknownType       = errors.New("registry: unknown backend type")
	ErrMissingIdentity   = errors.New("registry: document has no identity")
	ErrKindMismatch      = errors.New("registry: cached connection is of a different kind")
	ErrTypeRegistered    = errors.New("registry: backend type already registered")
	ErrNilFactory        = errors.New("registry: nil factory")
	ErrSubscribeFailed   = errors.New("registry: pub/sub subscription failed")
	ErrClosed            = errors.New("registry: closed")
)
