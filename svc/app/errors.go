package app

import "errors"

var (
	ErrNoServiceConnection = errors.New("app: cannot connect to the document store")
	ErrLoadFailed          = errors.New("app: failed to load application state")
	ErrUnknownVault        = errors.New("app: unknown key vault backend")
	ErrEmergencyMode       = errors.New("app: not available in emergency mode")
)
