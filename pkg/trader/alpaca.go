package trader

import (
	"context"

	"github.com/dmitrymomot/ppp/pkg/document"
)

const alpacaBaseURL = "https://api.alpaca.markets"

// Alpaca is the Alpaca v2 backend.
type Alpaca struct {
	restTrader
}

// NewAlpaca builds an Alpaca backend; key and secret are required.
func NewAlpaca(doc document.Document, opts ...Option) (*Alpaca, error) {
	key, err := Credential(doc, "key")
	if err != nil {
		return nil, err
	}
	secret, err := Credential(doc, "secret")
	if err != nil {
		return nil, err
	}

	rt := newRestTrader(doc, TypeAlpacaV2Plus, newOptions(alpacaBaseURL, "", opts))
	rt.client.
		SetHeader("APCA-API-KEY-ID", key).
		SetHeader("APCA-API-SECRET-KEY", secret)

	return &Alpaca{restTrader: rt}, nil
}

// Ping reads the market clock.
func (a *Alpaca) Ping(ctx context.Context) error {
	resp, err := a.client.R().SetContext(ctx).Get("/v2/clock")
	return mapHTTPError(resp, err)
}
