package pusher

import "errors"

var (
	ErrMissingKey           = errors.New("pusher: missing application key")
	ErrUnsupportedTransport = errors.New("pusher: unsupported transport")
	ErrNoTransport          = errors.New("pusher: no websocket transport enabled")
	ErrHandshakeFailed      = errors.New("pusher: connection handshake failed")
	ErrInvalidChannel       = errors.New("pusher: invalid channel name")
	ErrClosed               = errors.New("pusher: connection closed")
)
