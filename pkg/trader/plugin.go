package trader

import (
	"context"
	"fmt"
	"net/url"
	"plugin"
	"strings"

	"github.com/dmitrymomot/ppp/pkg/document"
)

// PluginSymbol is the symbol a custom backend plugin must export:
//
//	func New(doc document.Document) (trader.Trader, error)
const PluginSymbol = "New"

// LoadPlugin opens the Go plugin at location and returns its constructor as a
// Factory. Location is a filesystem path or a file:// URL. The plugin is
// trusted: it runs in-process with full privileges.
func LoadPlugin(location string) (Factory, error) {
	path, err := pluginPath(location)
	if err != nil {
		return nil, err
	}

	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPluginLoad, path, err)
	}

	sym, err := p.Lookup(PluginSymbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPluginLoad, path, err)
	}

	newFn, ok := sym.(func(document.Document) (Trader, error))
	if !ok {
		return nil, fmt.Errorf("%w: %s: symbol %s has type %T", ErrPluginLoad, path, PluginSymbol, sym)
	}

	return func(_ context.Context, doc document.Document) (Trader, error) {
		return newFn(doc)
	}, nil
}

func pluginPath(location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("%w: empty location", ErrUnsupportedLocation)
	}
	if !strings.Contains(location, "://") {
		return location, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedLocation, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: scheme %q", ErrUnsupportedLocation, u.Scheme)
	}
	return u.Path, nil
}
