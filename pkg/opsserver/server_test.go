package opsserver_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ppp/pkg/opsserver"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestHandler(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "ppp_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	t.Run("metrics", func(t *testing.T) {
		t.Parallel()

		code, body := get(t, opsserver.New(opsserver.WithGatherer(reg)).Handler(), "/metrics")
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "ppp_test_total 1")
	})

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()

		code, body := get(t, opsserver.New().Handler(), "/livez")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ALIVE", body)
	})

	t.Run("readiness", func(t *testing.T) {
		t.Parallel()

		ok := func(context.Context) error { return nil }
		down := func(context.Context) error { return errors.New("store unreachable") }

		code, body := get(t, opsserver.New(opsserver.WithReadiness("store", ok)).Handler(), "/readyz")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "READY", body)

		code, body = get(t, opsserver.New(
			opsserver.WithReadiness("vault", ok),
			opsserver.WithReadiness("store", down),
		).Handler(), "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "NOT_READY", body)
	})
}

func TestHandler_UnknownRoute(t *testing.T) {
	t.Parallel()

	code, _ := get(t, opsserver.New().Handler(), "/debug/vars")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRun(t *testing.T) {
	t.Parallel()

	srv := opsserver.NewFromConfig(opsserver.Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr().String() + "/livez")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_BadAddr(t *testing.T) {
	t.Parallel()

	err := opsserver.New(opsserver.WithAddr("256.0.0.1:-1")).Run(context.Background())
	assert.ErrorIs(t, err, opsserver.ErrStart)
}

func TestOptions_Panic(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { opsserver.WithAddr("") })
	assert.Panics(t, func() { opsserver.WithReadTimeout(0) })
	assert.Panics(t, func() { opsserver.WithReadiness("x", nil) })
}
