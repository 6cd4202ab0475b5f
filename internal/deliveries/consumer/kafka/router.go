package kafkaconsumer

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/graceful"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/metrics"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/config"
	"github.com/francois202/gigabanksystem1-sub000/internal/deliveries/http/health"
	"github.com/francois202/gigabanksystem1-sub000/internal/services"

	v1metrics "github.com/francois202/gigabanksystem1-sub000/internal/deliveries/http/v1/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

type svc struct {
	e               *echo.Echo
	addr            string
	gracefulTimeout time.Duration
}

var _ graceful.ProcessStartStopper = (*svc)(nil)

func (s *svc) Start() graceful.ProcessStarter {
	return func() error {
		return s.e.Start(s.addr)
	}
}

func (s *svc) Stop() graceful.ProcessStopper {
	return func(ctx context.Context) error {
		err := s.e.Shutdown(ctx)
		if err != nil {
			xlog.Errorf(ctx, "[SHUTDOWN] consumer HTTP server error: %v", err)
		}
		return err
	}
}

// NewHTTPServer exposes health, prometheus, pprof and the processing snapshot
// of this consumer process.
func NewHTTPServer(conf config.Config, mtc metrics.Metrics, processing services.ProcessingMetricsService, checks ...health.Check) *svc {
	app := echo.New()
	app.HideBanner = true
	svc := &svc{e: app, addr: fmt.Sprintf(":%d", conf.MessageBroker.HTTPPort), gracefulTimeout: conf.App.GracefulTimeout}

	// options middleware
	app.Pre(echomiddleware.RemoveTrailingSlash())
	app.Use(echomiddleware.Recover())
	app.Use(echomiddleware.RequestID())

	// pprof
	// Endpoint debug/pprof/
	if !conf.App.Environment().IsProduction() {
		pprof.Register(app)
	}

	// prometheus metrics
	gatherer := prometheus.DefaultGatherer
	if mtc != nil {
		if g, ok := mtc.PrometheusRegisterer().(prometheus.Gatherer); ok {
			gatherer = g
		}
		app.Use(mtc.EchoMiddleware(fmt.Sprintf("%s_consumer", conf.App.Name)))
	}
	app.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	// apiGroup
	apiGroup := app.Group("/api")

	// health check
	health.New(apiGroup, checks...)

	if processing != nil {
		v1metrics.New(apiGroup.Group("/v1"), processing)
	}

	return svc
}
