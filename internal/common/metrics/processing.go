package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	PathSingle = "single"
	PathBatch  = "batch"
)

// ProcessingMetrics aggregates outcomes of one processing path. Counters only
// grow; the latency average is a running mean over every recorded sample.
type ProcessingMetrics struct {
	total         atomic.Int64
	successful    atomic.Int64
	failed        atomic.Int64
	duplicate     atomic.Int64
	retryAttempts atomic.Int64
	dltMessages   atomic.Int64

	mu         sync.Mutex
	samples    int64
	avgLatency float64
}

func NewProcessingMetrics() *ProcessingMetrics {
	return &ProcessingMetrics{}
}

func (m *ProcessingMetrics) RecordSuccess(latency time.Duration) {
	if m == nil {
		return
	}
	m.total.Add(1)
	m.successful.Add(1)
	m.addLatencySample(latency)
}

func (m *ProcessingMetrics) RecordFailure() {
	if m == nil {
		return
	}
	m.total.Add(1)
	m.failed.Add(1)
}

func (m *ProcessingMetrics) RecordDuplicate() {
	if m == nil {
		return
	}
	m.total.Add(1)
	m.duplicate.Add(1)
}

func (m *ProcessingMetrics) RecordRetry() {
	if m == nil {
		return
	}
	m.retryAttempts.Add(1)
}

func (m *ProcessingMetrics) RecordDeadLetter() {
	if m == nil {
		return
	}
	m.dltMessages.Add(1)
}

// RecordBatch adds the counts of a finished batch. The per event average of
// the batch is the latency sample.
func (m *ProcessingMetrics) RecordBatch(result models.BatchResult) {
	if m == nil {
		return
	}
	m.total.Add(int64(result.Total))
	m.successful.Add(int64(result.Succeeded))
	m.failed.Add(int64(result.Failed))
	m.duplicate.Add(int64(result.Duplicates))
	if result.Total > 0 {
		m.addLatencySample(result.AveragePerEvent())
	}
}

func (m *ProcessingMetrics) addLatencySample(latency time.Duration) {
	sample := float64(latency) / float64(time.Millisecond)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.avgLatency = (m.avgLatency*float64(m.samples) + sample) / float64(m.samples+1)
	m.samples++
}

func (m *ProcessingMetrics) Snapshot() models.ProcessingMetricsSnapshot {
	if m == nil {
		return models.ProcessingMetricsSnapshot{}
	}
	m.mu.Lock()
	avg := m.avgLatency
	m.mu.Unlock()

	return models.ProcessingMetricsSnapshot{
		Total:          m.total.Load(),
		Successful:     m.successful.Load(),
		Failed:         m.failed.Load(),
		Duplicate:      m.duplicate.Load(),
		RetryAttempts:  m.retryAttempts.Load(),
		DLTMessages:    m.dltMessages.Load(),
		AverageLatency: avg,
	}
}

type processingCollector struct {
	paths map[string]*ProcessingMetrics

	total      *prometheus.Desc
	successful *prometheus.Desc
	failed     *prometheus.Desc
	duplicate  *prometheus.Desc
	retries    *prometheus.Desc
	dlt        *prometheus.Desc
	latency    *prometheus.Desc
}

func newProcessingCollector(paths map[string]*ProcessingMetrics) *processingCollector {
	labels := []string{"path"}
	return &processingCollector{
		paths:      paths,
		total:      prometheus.NewDesc("transaction_processing_total", "Transaction events seen by the processing path.", labels, nil),
		successful: prometheus.NewDesc("transaction_processing_successful_total", "Transaction events applied to the ledger.", labels, nil),
		failed:     prometheus.NewDesc("transaction_processing_failed_total", "Transaction events that failed terminally.", labels, nil),
		duplicate:  prometheus.NewDesc("transaction_processing_duplicate_total", "Transaction events skipped as duplicates.", labels, nil),
		retries:    prometheus.NewDesc("transaction_processing_retry_attempts_total", "Retry attempts performed.", labels, nil),
		dlt:        prometheus.NewDesc("transaction_processing_dlt_messages_total", "Messages routed to the dead letter topic.", labels, nil),
		latency:    prometheus.NewDesc("transaction_processing_average_latency_ms", "Running average processing latency in milliseconds.", labels, nil),
	}
}

func (c *processingCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.successful
	ch <- c.failed
	ch <- c.duplicate
	ch <- c.retries
	ch <- c.dlt
	ch <- c.latency
}

func (c *processingCollector) Collect(ch chan<- prometheus.Metric) {
	for path, m := range c.paths {
		s := m.Snapshot()
		ch <- prometheus.MustNewConstMetric(c.total, prometheus.CounterValue, float64(s.Total), path)
		ch <- prometheus.MustNewConstMetric(c.successful, prometheus.CounterValue, float64(s.Successful), path)
		ch <- prometheus.MustNewConstMetric(c.failed, prometheus.CounterValue, float64(s.Failed), path)
		ch <- prometheus.MustNewConstMetric(c.duplicate, prometheus.CounterValue, float64(s.Duplicate), path)
		ch <- prometheus.MustNewConstMetric(c.retries, prometheus.CounterValue, float64(s.RetryAttempts), path)
		ch <- prometheus.MustNewConstMetric(c.dlt, prometheus.CounterValue, float64(s.DLTMessages), path)
		ch <- prometheus.MustNewConstMetric(c.latency, prometheus.GaugeValue, s.AverageLatency, path)
	}
}
