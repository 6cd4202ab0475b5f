package main

import (
	"context"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/cmd/setup"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/graceful"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/deliveries/http"
)

const setupFailureTimeout = 5 * time.Second

// api serves the generate endpoint and the processing snapshot.
func main() {
	ctx := context.Background()

	s, stopperContract, err := setup.Init("api")
	if err != nil {
		timeout := setupFailureTimeout
		if s != nil && s.Config.App.GracefulTimeout > 0 {
			timeout = s.Config.App.GracefulTimeout
		}
		_ = graceful.StopProcess(timeout, stopperContract...)
		xlog.Fatalf(ctx, "failed to setup app: %v", err)
	}

	httpServer := http.NewHTTPServer(s.Config, s.NewRelic, s.Service, s.Metrics, s.HealthChecks()...)

	// the server stops before the producers and pools it depends on
	stoppers := append([]graceful.ProcessStopper{}, stopperContract...)
	stoppers = append(stoppers, httpServer.Stop())

	graceful.StartProcessAtBackground(httpServer.Start())
	xlog.Info(ctx, "http server started, waiting for shutdown signal...",
		xlog.Int("port", s.Config.App.HTTPPort),
		xlog.String("env", s.Config.App.Environment().String()))

	graceful.StopProcessAtBackground(s.Config.App.GracefulTimeout, stoppers...)
	xlog.Info(ctx, "http server stopped!")
}
