package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"

	"github.com/labstack/echo/v4"
	"golang.org/x/exp/slices"
)

const (
	logPrefixHTTP = "[HTTP]"

	// maxLoggedBody caps request and response bodies in the access log.
	maxLoggedBody = 4 << 10
)

// excludedLogPrefixes are probes and scrapes that would drown the access log.
var excludedLogPrefixes = []string{
	"/api/health",
	"/metrics",
	"/debug/pprof",
}

var sensitiveHeaders = map[string]struct{}{
	"authorization": {},
	"cookie":        {},
	"set-cookie":    {},
	"x-api-key":     {},
}

// teeResponseWriter copies everything written to the client into body.
type teeResponseWriter struct {
	http.ResponseWriter
	body *bytes.Buffer
}

func (w *teeResponseWriter) Write(b []byte) (int, error) {
	if room := maxLoggedBody - w.body.Len(); room > 0 {
		w.body.Write(b[:min(room, len(b))])
	}
	return w.ResponseWriter.Write(b)
}

func (w *teeResponseWriter) Flush() {
	err := http.NewResponseController(w.ResponseWriter).Flush()
	if err != nil && errors.Is(err, http.ErrNotSupported) {
		panic(errors.New("response writer flushing is not supported"))
	}
}

func (w *teeResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

func (w *teeResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func skipAccessLog(path string) bool {
	return slices.ContainsFunc(excludedLogPrefixes, func(prefix string) bool {
		return strings.HasPrefix(path, prefix)
	})
}

func truncateBody(body []byte) string {
	if len(body) <= maxLoggedBody {
		return string(body)
	}
	return string(body[:maxLoggedBody]) + "...(truncated)"
}

// readRequestBody drains the body and puts an identical reader back.
func readRequestBody(req *http.Request) []byte {
	if req.Body == nil {
		return nil
	}
	body, _ := io.ReadAll(req.Body)
	req.Body = io.NopCloser(bytes.NewReader(body))
	return body
}

func maskedHeaders(header http.Header) string {
	masked := make(map[string][]string, len(header))
	for k, vals := range header {
		if _, ok := sensitiveHeaders[strings.ToLower(k)]; ok {
			masked[k] = []string{"*****"}
			continue
		}
		masked[k] = vals
	}
	b, _ := json.Marshal(masked)
	return string(b)
}

// Logger writes one access log entry per request. The level follows the
// response status.
func (m *AppMiddleware) Logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if skipAccessLog(req.URL.Path) {
				return next(c)
			}

			start := time.Now()
			reqBody := readRequestBody(req)
			resBody := new(bytes.Buffer)
			c.Response().Writer = &teeResponseWriter{ResponseWriter: c.Response().Writer, body: resBody}

			if err := next(c); err != nil {
				c.Error(err)
			}

			res := c.Response()
			fields := []xlog.Field{
				xlog.String("method", req.Method),
				xlog.String("url_path", req.URL.String()),
				xlog.String("route", c.Path()),
				xlog.Int("status", res.Status),
				xlog.Int64("response_size", res.Size),
				xlog.Duration("latency", time.Since(start)),
				xlog.String("request_header", maskedHeaders(req.Header)),
				xlog.String("request_body", truncateBody(reqBody)),
				xlog.String("response", resBody.String()),
				xlog.String("correlation_id", res.Header().Get(HeaderCorrelationID)),
				xlog.String("app", m.conf.App.Name),
			}

			ctx := req.Context()
			switch {
			case res.Status >= http.StatusInternalServerError:
				xlog.Error(ctx, logPrefixHTTP, fields...)
			case res.Status >= http.StatusBadRequest:
				xlog.Warn(ctx, logPrefixHTTP, fields...)
			default:
				xlog.Info(ctx, logPrefixHTTP, fields...)
			}

			return nil
		}
	}
}
