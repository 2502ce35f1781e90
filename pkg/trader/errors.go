package trader

import "errors"

var (
	ErrMissingCredential   = errors.New("trader: missing credential")
	ErrRequestFailed       = errors.New("trader: request failed")
	ErrUnauthorized        = errors.New("trader: unauthorized")
	ErrPluginLoad          = errors.New("trader: failed to load plugin")
	ErrUnsupportedLocation = errors.New("trader: unsupported plugin location")
)
