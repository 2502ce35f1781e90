package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed      = errors.New("mongo healthcheck failed")
	ErrMissingConnectionURL   = errors.New("mongo connection url is empty")
	ErrNotFound               = errors.New("mongo document not found")
	ErrUnexpectedTransform    = errors.New("mongo transform returned an unexpected type")
)
