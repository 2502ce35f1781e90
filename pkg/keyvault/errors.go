package keyvault

import "errors"

var (
	ErrKeyMissing            = errors.New("key vault: key is missing")
	ErrVaultUnavailable      = errors.New("key vault: backend unavailable")
	ErrFailedToParseRedisURL = errors.New("key vault: failed to parse redis connection string")
	ErrRedisNotReady         = errors.New("key vault: redis did not become ready within the given time period")
)
