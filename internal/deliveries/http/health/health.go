package health

import (
	"context"
	"net/http"
	"time"

	commonhttp "github.com/francois202/gigabanksystem1-sub000/internal/common/http"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"

	"github.com/labstack/echo/v4"
)

const (
	statusUp   = "up"
	statusDown = "down"

	defaultCheckTimeout = 2 * time.Second
)

// Check is a dependency probed by the readiness endpoint.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type healthHandler struct {
	checks  []Check
	timeout time.Duration
}

// New registers /health for liveness and /health/ready which pings every check.
func New(app *echo.Group, checks ...Check) {
	hh := healthHandler{checks: checks, timeout: defaultCheckTimeout}
	app.GET("/health", hh.healthCheck())
	app.GET("/health/ready", hh.readinessCheck())
}

type (
	DoHealthCheckLivenessResponse struct {
		Kind   string `json:"kind" example:"health"`
		Status string `json:"status" example:"server is up and running"`
	}

	DoHealthCheckReadinessResponse struct {
		Kind   string            `json:"kind" example:"readiness"`
		Ready  bool              `json:"ready" example:"true"`
		Checks map[string]string `json:"checks"`
	}
)

func (hh healthHandler) healthCheck() echo.HandlerFunc {
	return func(c echo.Context) error {
		return commonhttp.RestSuccessResponse(c, http.StatusOK, DoHealthCheckLivenessResponse{
			Kind:   "health",
			Status: "server is up and running",
		})
	}
}

func (hh healthHandler) readinessCheck() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), hh.timeout)
		defer cancel()

		res := DoHealthCheckReadinessResponse{
			Kind:   "readiness",
			Ready:  true,
			Checks: make(map[string]string, len(hh.checks)),
		}
		for _, check := range hh.checks {
			if err := check.Ping(ctx); err != nil {
				xlog.Warn(ctx, "[HEALTH]", xlog.String("check", check.Name), xlog.Err(err))
				res.Ready = false
				res.Checks[check.Name] = statusDown
				continue
			}
			res.Checks[check.Name] = statusUp
		}

		code := http.StatusOK
		if !res.Ready {
			code = http.StatusServiceUnavailable
		}
		return commonhttp.RestSuccessResponse(c, code, res)
	}
}
