package middleware

import (
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog/ctxdata"

	"github.com/labstack/echo/v4"
)

const HeaderCorrelationID = "X-Correlation-Id"

// Context stores the correlation id of the request for every log entry. The
// caller's header wins over the generated request id.
func (m *AppMiddleware) Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			correlationID := req.Header.Get(HeaderCorrelationID)
			if correlationID == "" {
				correlationID = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			ctx := ctxdata.Sets(req.Context(),
				ctxdata.SetCorrelationId(correlationID),
				ctxdata.SetUserAgent(req.UserAgent()),
			)
			ctx = ctxdata.EnsureCorrelationId(ctx)
			c.SetRequest(req.WithContext(ctx))
			c.Response().Header().Set(HeaderCorrelationID, ctxdata.GetCorrelationId(ctx))

			return next(c)
		}
	}
}
