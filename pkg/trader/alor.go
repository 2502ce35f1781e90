package trader

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/dmitrymomot/ppp/pkg/document"
)

const (
	alorBaseURL = "https://api.alor.ru"
	alorAuthURL = "https://oauth.alor.ru"
)

// Alor is the ALOR OpenAPI v2 backend. It exchanges the long-lived refresh
// token for a short-lived access token on first use.
type Alor struct {
	restTrader
	authURL      string
	refreshToken string
	portfolio    string

	mu          sync.Mutex
	accessToken string
}

// NewAlor builds an ALOR backend; the document (or its broker) must carry refreshToken.
func NewAlor(doc document.Document, opts ...Option) (*Alor, error) {
	refresh, err := Credential(doc, "refreshToken")
	if err != nil {
		return nil, err
	}

	o := newOptions(alorBaseURL, alorAuthURL, opts)
	return &Alor{
		restTrader:   newRestTrader(doc, TypeAlorOpenAPIV2, o),
		authURL:      o.authURL,
		refreshToken: refresh,
		portfolio:    doc.String("portfolio"),
	}, nil
}

// Portfolio returns the configured portfolio identifier.
func (a *Alor) Portfolio() string { return a.portfolio }

// Ping reads the exchange server time using a fresh access token.
func (a *Alor) Ping(ctx context.Context) error {
	token, err := a.token(ctx)
	if err != nil {
		return err
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get("/md/v2/time")
	return mapHTTPError(resp, err)
}

func (a *Alor) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" {
		return a.accessToken, nil
	}

	var result struct {
		AccessToken string `json:"AccessToken"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&result).
		Post(a.authURL + "/refresh?token=" + url.QueryEscape(a.refreshToken))
	if err := mapHTTPError(resp, err); err != nil {
		return "", fmt.Errorf("alor: refresh access token: %w", err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("alor: refresh access token: %w", ErrUnauthorized)
	}

	a.accessToken = result.AccessToken
	return a.accessToken, nil
}
