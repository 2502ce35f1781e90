package trader

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrymomot/ppp/pkg/document"
)

const defaultTimeout = 15 * time.Second

type options struct {
	baseURL string
	authURL string
	timeout time.Duration
}

// Option overrides backend endpoints and timeouts.
type Option func(*options)

// WithBaseURL overrides the REST endpoint of the backend.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithAuthURL overrides the token endpoint for backends that exchange tokens.
func WithAuthURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.authURL = u
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func newOptions(baseURL, authURL string, opts []Option) *options {
	o := &options{baseURL: baseURL, authURL: authURL, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// restTrader carries what every REST backend shares.
type restTrader struct {
	id     string
	typ    Type
	client *resty.Client
}

func newRestTrader(doc document.Document, typ Type, o *options) restTrader {
	return restTrader{
		id:  doc.ID(),
		typ: typ,
		client: resty.New().
			SetBaseURL(strings.TrimRight(o.baseURL, "/")).
			SetTimeout(o.timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (r *restTrader) ID() string { return r.id }
func (r *restTrader) Type() Type { return r.typ }

// Close releases idle connections held by the HTTP client.
func (r *restTrader) Close() error {
	r.client.GetClient().CloseIdleConnections()
	return nil
}

func mapHTTPError(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, code)
	case resp.IsError():
		return fmt.Errorf("%w: status %d", ErrRequestFailed, code)
	}
	return nil
}
