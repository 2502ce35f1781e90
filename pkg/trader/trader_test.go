package trader_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ppp/pkg/document"
	"github.com/dmitrymomot/ppp/pkg/trader"
)

func TestBuiltins(t *testing.T) {
	t.Parallel()

	b := trader.Builtins()
	assert.Len(t, b, 4)
	for _, typ := range []trader.Type{
		trader.TypeAlorOpenAPIV2,
		trader.TypeTinkoffGRPCWeb,
		trader.TypeAlpacaV2Plus,
		trader.TypeBinanceV3,
	} {
		assert.Contains(t, b, typ)
	}
	assert.NotContains(t, b, trader.TypeCustom)
}

func TestBuiltins_Construct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ trader.Type
		doc document.Document
	}{
		{trader.TypeAlorOpenAPIV2, document.Document{"_id": "1", "broker": document.Document{"refreshToken": "r"}}},
		{trader.TypeTinkoffGRPCWeb, document.Document{"_id": "2", "broker": document.Document{"apiToken": "t"}}},
		{trader.TypeAlpacaV2Plus, document.Document{"_id": "3", "key": "k", "secret": "s"}},
		{trader.TypeBinanceV3, document.Document{"_id": "4", "key": "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			t.Parallel()
			tr, err := trader.Builtins()[tt.typ](context.Background(), tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.doc.ID(), tr.ID())
			assert.Equal(t, tt.typ, tr.Type())
			require.NoError(t, tr.Close())

			tr, err = trader.Builtins()[tt.typ](context.Background(), document.Document{"_id": "x"})
			require.ErrorIs(t, err, trader.ErrMissingCredential)
			assert.True(t, tr == nil, "failed construction must return an untyped nil, got %#v", tr)
		})
	}
}

func TestCredential(t *testing.T) {
	t.Parallel()

	doc := document.Document{
		"apiToken": "top",
		"broker":   document.Document{"apiToken": "nested", "refreshToken": "r"},
	}

	v, err := trader.Credential(doc, "apiToken")
	require.NoError(t, err)
	assert.Equal(t, "top", v)

	v, err = trader.Credential(doc, "refreshToken")
	require.NoError(t, err)
	assert.Equal(t, "r", v)

	_, err = trader.Credential(doc, "secret")
	require.ErrorIs(t, err, trader.ErrMissingCredential)
}

func TestAlor_Ping(t *testing.T) {
	t.Parallel()

	var refreshes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/refresh":
			refreshes.Add(1)
			if r.URL.Query().Get("token") != "refresh-me" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"AccessToken": "access"})
		case "/md/v2/time":
			if r.Header.Get("Authorization") != "Bearer access" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte("1700000000"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	a, err := trader.NewAlor(document.Document{"_id": "a", "refreshToken": "refresh-me", "portfolio": "D1"},
		trader.WithBaseURL(srv.URL), trader.WithAuthURL(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "D1", a.Portfolio())

	require.NoError(t, a.Ping(context.Background()))
	require.NoError(t, a.Ping(context.Background()))
	assert.Equal(t, int32(1), refreshes.Load())

	bad, err := trader.NewAlor(document.Document{"_id": "b", "refreshToken": "wrong"},
		trader.WithBaseURL(srv.URL), trader.WithAuthURL(srv.URL))
	require.NoError(t, err)
	require.ErrorIs(t, bad.Ping(context.Background()), trader.ErrUnauthorized)
}

func TestTinkoff_Ping(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tinkoff.public.invest.api.contract.v1.UsersService/GetInfo", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer t.good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"premStatus":false}`))
	}))
	defer srv.Close()

	ok, err := trader.NewTinkoff(document.Document{"apiToken": "t.good"}, trader.WithBaseURL(srv.URL))
	require.NoError(t, err)
	require.NoError(t, ok.Ping(context.Background()))

	bad, err := trader.NewTinkoff(document.Document{"apiToken": "t.bad"}, trader.WithBaseURL(srv.URL))
	require.NoError(t, err)
	require.ErrorIs(t, bad.Ping(context.Background()), trader.ErrUnauthorized)
}

func TestAlpacaAndBinance_Ping(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/clock":
			if r.Header.Get("APCA-API-KEY-ID") != "k" || r.Header.Get("APCA-API-SECRET-KEY") != "s" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
		case "/api/v3/time":
			if r.Header.Get("X-MBX-APIKEY") != "k" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		default:
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	alpaca, err := trader.NewAlpaca(document.Document{"key": "k", "secret": "s"}, trader.WithBaseURL(srv.URL))
	require.NoError(t, err)
	require.NoError(t, alpaca.Ping(context.Background()))

	binance, err := trader.NewBinance(document.Document{"key": "k"}, trader.WithBaseURL(srv.URL))
	require.NoError(t, err)
	require.NoError(t, binance.Ping(context.Background()))

	wrong, err := trader.NewBinance(document.Document{"key": "other"}, trader.WithBaseURL(srv.URL))
	require.NoError(t, err)
	require.ErrorIs(t, wrong.Ping(context.Background()), trader.ErrUnauthorized)
}

func TestPing_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	b, err := trader.NewBinance(document.Document{"key": "k"}, trader.WithBaseURL(srv.URL))
	require.NoError(t, err)
	require.ErrorIs(t, b.Ping(context.Background()), trader.ErrRequestFailed)
}

func TestLoadPlugin_Locations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		location string
		wantErr  error
	}{
		{"empty", "", trader.ErrUnsupportedLocation},
		{"https", "https://example.com/trader.so", trader.ErrUnsupportedLocation},
		{"missing file", "/nonexistent/trader.so", trader.ErrPluginLoad},
		{"missing file url", "file:///nonexistent/trader.so", trader.ErrPluginLoad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := trader.LoadPlugin(tt.location)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
