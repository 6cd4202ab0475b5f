package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"
	"github.com/francois202/gigabanksystem1-sub000/internal/services/mock"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	xlog.InitForTest()
	os.Exit(m.Run())
}

func TestHandler_getProcessingMetrics(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockSvc := mock.NewMockProcessingMetricsService(mockCtrl)

	app := echo.New()
	New(app.Group("/api/v1"), mockSvc)

	mockSvc.EXPECT().GetProcessingMetrics(gomock.Any()).Return(models.ProcessingMetricsResponse{
		Kind: "processingMetrics",
		Single: models.ProcessingMetricsSnapshot{
			Total:          4,
			Successful:     2,
			Failed:         1,
			Duplicate:      1,
			RetryAttempts:  3,
			DLTMessages:    1,
			AverageLatency: 1.5,
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/processing", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	resp := rec.Result()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t,
		`{"kind":"processingMetrics","single":{"total":4,"successful":2,"failed":1,"duplicate":1,"retryAttempts":3,"dltMessages":1,"averageLatencyMs":1.5},"batch":{"total":0,"successful":0,"failed":0,"duplicate":0,"retryAttempts":0,"dltMessages":0,"averageLatencyMs":0}}`,
		strings.TrimSuffix(string(body), "\n"))
}
