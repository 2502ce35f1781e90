// Package opsserver serves the operational endpoints of the process:
//
//	/metrics  Prometheus exposition of the configured gatherer
//	/livez    200 ALIVE while the process runs
//	/readyz   200 READY when every readiness check passes, 503 NOT_READY otherwise
//
// Run blocks until the context is cancelled and then shuts the listener down
// gracefully:
//
//	srv := opsserver.NewFromConfig(cfg.Ops,
//		opsserver.WithLogger(log),
//		opsserver.WithReadiness("store", app.Healthcheck),
//	)
//	go srv.Run(ctx)
package opsserver
