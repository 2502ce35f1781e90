package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/ppp/pkg/logger"
	"github.com/dmitrymomot/ppp/pkg/opsserver"
	"github.com/dmitrymomot/ppp/svc/app"
)

func main() {
	if err := run(); err != nil {
		slog.Error("ppp stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	log := cfg.Logger(logger.WithAttr(slog.String("instance_id", uuid.NewString())))
	slog.SetDefault(log)

	vault, closeVault, err := app.OpenVault(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeVault(); err != nil {
			log.Warn("key vault close failed", logger.Error(err))
		}
	}()

	opts := []app.Option{app.WithLogger(log)}
	if cfg.Metrics {
		opts = append(opts, app.WithMetrics(prometheus.DefaultRegisterer))
	}

	a, err := app.Start(ctx, cfg, vault, opts...)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			log.Warn("shutdown incomplete", logger.Error(err))
		}
	}()

	if a.Mode() == app.ModeEmergency {
		log.Warn("running in emergency mode: configure cloud services to continue")
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Ops.Enabled {
		srv := opsserver.NewFromConfig(cfg.Ops,
			opsserver.WithLogger(log),
			opsserver.WithReadiness("store", a.Healthcheck),
		)
		g.Go(func() error { return srv.Run(ctx) })
	}
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
