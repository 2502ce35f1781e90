package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultPrefix is prepended to every variable name.
const DefaultPrefix = "PPP_"

type loader struct {
	prefix      string
	files       []string
	environment map[string]string
}

// Option configures Load.
type Option func(*loader)

// WithPrefix replaces DefaultPrefix. An empty prefix reads bare names.
func WithPrefix(prefix string) Option {
	return func(l *loader) {
		l.prefix = prefix
	}
}

// WithEnvFiles loads the given .env files instead of the default one.
// A missing file is an error.
func WithEnvFiles(paths ...string) Option {
	return func(l *loader) {
		l.files = append(l.files, paths...)
	}
}

// WithEnvironment parses from env instead of the process environment.
// No .env file is loaded.
func WithEnvironment(env map[string]string) Option {
	return func(l *loader) {
		l.environment = env
	}
}

// Load populates v from the environment.
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	l := &loader{prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(l)
	}

	switch {
	case l.environment != nil:
	case len(l.files) > 0:
		if err := godotenv.Load(l.files...); err != nil {
			return errors.Join(ErrLoadingEnvFile, err)
		}
	default:
		// the default .env is optional
		_ = godotenv.Load()
	}

	if err := env.ParseWithOptions(v, env.Options{
		Prefix:      l.prefix,
		Environment: l.environment,
	}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
