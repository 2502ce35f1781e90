package trader

import (
	"context"

	"github.com/dmitrymomot/ppp/pkg/document"
)

const binanceBaseURL = "https://api.binance.com"

// Binance is the Binance spot API v3 backend.
type Binance struct {
	restTrader
}

// NewBinance builds a Binance backend; key is required.
func NewBinance(doc document.Document, opts ...Option) (*Binance, error) {
	key, err := Credential(doc, "key")
	if err != nil {
		return nil, err
	}

	rt := newRestTrader(doc, TypeBinanceV3, newOptions(binanceBaseURL, "", opts))
	rt.client.SetHeader("X-MBX-APIKEY", key)

	return &Binance{restTrader: rt}, nil
}

// Ping reads the server time.
func (b *Binance) Ping(ctx context.Context) error {
	resp, err := b.client.R().SetContext(ctx).Get("/api/v3/time")
	return mapHTTPError(resp, err)
}
