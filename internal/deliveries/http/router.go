package http

import (
	"context"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/graceful"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/http/middleware"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/metrics"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog/ctxdata"
	"github.com/francois202/gigabanksystem1-sub000/internal/config"
	"github.com/francois202/gigabanksystem1-sub000/internal/deliveries/http/health"
	"github.com/francois202/gigabanksystem1-sub000/internal/services"

	commonhttp "github.com/francois202/gigabanksystem1-sub000/internal/common/http"
	v1metrics "github.com/francois202/gigabanksystem1-sub000/internal/deliveries/http/v1/metrics"
	v1transaction "github.com/francois202/gigabanksystem1-sub000/internal/deliveries/http/v1/transaction"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/newrelic"
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
			xlog.Errorf(ctx, "[SHUTDOWN] HTTP server error: %v", err)
		} else {
			xlog.Info(ctx, "[SHUTDOWN] HTTP server stopped successfully")
		}

		return err
	}
}

// Handler exposes the router for tests.
func (s *svc) Handler() nethttp.Handler {
	return s.e
}

func NewHTTPServer(
	conf config.Config,
	nr *newrelic.Application,
	srv *services.Services,
	mtc metrics.Metrics,
	checks ...health.Check,
) *svc {
	app := echo.New()
	app.HideBanner = true

	svc := &svc{
		e:               app,
		addr:            fmt.Sprintf(":%d", conf.App.HTTPPort),
		gracefulTimeout: conf.App.GracefulTimeout,
	}

	m := middleware.NewMiddleware(conf)
	// options middleware
	app.Pre(echomiddleware.RemoveTrailingSlash())
	app.Use(echomiddleware.Recover())
	app.Use(echomiddleware.RequestID())
	app.Use(m.Context())
	app.Use(m.Logger())

	if nr != nil {
		app.Use(nrecho.Middleware(nr))

		app.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				txn := newrelic.FromContext(c.Request().Context())
				if txn != nil {
					txn.AddAttribute("x-correlation-id", ctxdata.GetCorrelationId(c.Request().Context()))
				}

				return next(c)
			}
		})
	}

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
		app.Use(mtc.EchoMiddleware(conf.App.Name))
	}
	app.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	// apiGroup
	apiGroup := app.Group("/api")

	// health check
	health.New(apiGroup, checks...)

	// v1Group
	v1Group := apiGroup.Group("/v1")
	v1transaction.New(v1Group, srv.Generator)
	v1metrics.New(v1Group, srv.Processing)

	// prepare an endpoint for 'Not Found'.
	app.Any("*", func(c echo.Context) error {
		errorMessage := fmt.Errorf("route '%s' does not exist in this API", c.Request().URL)
		return commonhttp.RestErrorResponse(c, nethttp.StatusNotFound, errorMessage)
	})

	return svc
}
