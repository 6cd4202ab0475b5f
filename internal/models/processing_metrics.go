package models

import "time"

type ProcessingMetricsSnapshot struct {
	Total          int64   `json:"total"`
	Successful     int64   `json:"successful"`
	Failed         int64   `json:"failed"`
	Duplicate      int64   `json:"duplicate"`
	RetryAttempts  int64   `json:"retryAttempts"`
	DLTMessages    int64   `json:"dltMessages"`
	AverageLatency float64 `json:"averageLatencyMs"`
}

type BatchResult struct {
	Total      int
	Succeeded  int
	Failed     int
	Duplicates int
	Elapsed    time.Duration
}

// Success reports whether at least one event of the batch was applied.
func (r BatchResult) Success() bool {
	return r.Succeeded > 0
}

func (r BatchResult) AveragePerEvent() time.Duration {
	if r.Total == 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Total)
}

type ProcessingMetricsResponse struct {
	Kind   string                    `json:"kind"`
	Single ProcessingMetricsSnapshot `json:"single"`
	Batch  ProcessingMetricsSnapshot `json:"batch"`
}
