package trader

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/ppp/pkg/document"
)

// Type is the backend type tag stored in a connection document.
type Type string

const (
	TypeAlorOpenAPIV2  Type = "alor-openapi-v2"
	TypeTinkoffGRPCWeb Type = "tinkoff-grpc-web"
	TypeAlpacaV2Plus   Type = "alpaca-v2-plus"
	TypeBinanceV3      Type = "binance-v3"
	TypeCustom         Type = "custom"
)

func (t Type) String() string {
	return string(t)
}

// Trader is a live backend connection.
type Trader interface {
	// ID returns the identity of the document the trader was built from.
	ID() string
	Type() Type
	// Ping checks that the backend is reachable with the configured credentials.
	Ping(ctx context.Context) error
	// Close releases the connection.
	Close() error
}

// Factory constructs a trader from its configuration document.
type Factory func(ctx context.Context, doc document.Document) (Trader, error)

// Builtins returns the factories of the compiled-in backend types.
// The custom type is not included; it is resolved per document.
func Builtins() map[Type]Factory {
	return map[Type]Factory{
		TypeAlorOpenAPIV2:  factory(NewAlor),
		TypeTinkoffGRPCWeb: factory(NewTinkoff),
		TypeAlpacaV2Plus:   factory(NewAlpaca),
		TypeBinanceV3:      factory(NewBinance),
	}
}

// factory adapts a concrete constructor. A failed construction yields a nil
// Trader, never a typed nil pointer.
func factory[T Trader](build func(document.Document, ...Option) (T, error)) Factory {
	return func(_ context.Context, d document.Document) (Trader, error) {
		t, err := build(d)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
}

// Credential returns a string field from the document, falling back to its
// broker sub-document.
func Credential(doc document.Document, field string) (string, error) {
	if v := doc.String(field); v != "" {
		return v, nil
	}
	if broker, ok := doc.Sub("broker"); ok {
		if v := broker.String(field); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrMissingCredential, field)
}
