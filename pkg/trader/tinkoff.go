package trader

import (
	"context"

	"github.com/dmitrymomot/ppp/pkg/document"
)

const tinkoffBaseURL = "https://invest-public-api.tinkoff.ru/rest"

// Tinkoff is the Tinkoff Invest API backend, reached through its REST gateway
// of the gRPC services.
type Tinkoff struct {
	restTrader
	apiToken string
}

// NewTinkoff builds a Tinkoff backend; the document (or its broker) must carry apiToken.
func NewTinkoff(doc document.Document, opts ...Option) (*Tinkoff, error) {
	token, err := Credential(doc, "apiToken")
	if err != nil {
		return nil, err
	}

	return &Tinkoff{
		restTrader: newRestTrader(doc, TypeTinkoffGRPCWeb, newOptions(tinkoffBaseURL, "", opts)),
		apiToken:   token,
	}, nil
}

// Ping calls UsersService.GetInfo.
func (t *Tinkoff) Ping(ctx context.Context) error {
	resp, err := t.client.R().
		SetContext(ctx).
		SetAuthToken(t.apiToken).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{}).
		Post("/tinkoff.public.invest.api.contract.v1.UsersService/GetInfo")
	return mapHTTPError(resp, err)
}
