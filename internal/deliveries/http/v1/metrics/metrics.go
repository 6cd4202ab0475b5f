package metrics

import (
	"net/http"

	"github.com/francois202/gigabanksystem1-sub000/internal/services"

	commonhttp "github.com/francois202/gigabanksystem1-sub000/internal/common/http"

	"github.com/labstack/echo/v4"
)

type metricsHandler struct {
	processingSvc services.ProcessingMetricsService
}

// New metrics handler will initialize the metrics/ resources endpoint
func New(app *echo.Group, processingSvc services.ProcessingMetricsService) {
	handler := metricsHandler{processingSvc: processingSvc}
	app.GET("/metrics/processing", handler.getProcessingMetrics())
}

// getProcessingMetrics API get processing metrics
// @Summary Get processing metrics
// @Description Snapshot of the single and batch processing counters
// @Tags Metrics
// @Produce  json
// @Success 200 {object} models.ProcessingMetricsResponse
// @Router /v1/metrics/processing [get]
func (h *metricsHandler) getProcessingMetrics() echo.HandlerFunc {
	return func(c echo.Context) error {
		return commonhttp.RestSuccessResponse(c, http.StatusOK, h.processingSvc.GetProcessingMetrics(c.Request().Context()))
	}
}
