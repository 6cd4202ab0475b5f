package services

import (
	"context"

	"github.com/francois202/gigabanksystem1-sub000/internal/models"
)

type ProcessingMetricsService interface {
	GetProcessingMetrics(ctx context.Context) models.ProcessingMetricsResponse
}

type processingMetrics service

var _ ProcessingMetricsService = (*processingMetrics)(nil)

func (pm *processingMetrics) GetProcessingMetrics(ctx context.Context) models.ProcessingMetricsResponse {
	return models.ProcessingMetricsResponse{
		Kind:   "processingMetrics",
		Single: pm.srv.metrics.SingleProcessing().Snapshot(),
		Batch:  pm.srv.metrics.BatchProcessing().Snapshot(),
	}
}
