package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type PublisherPrometheusMetrics struct {
	kafkaPublishDurationHist *prometheus.HistogramVec
	kafkaPublishedTotal      *prometheus.CounterVec
}

func newPublisherPrometheusMetrics(reg prometheus.Registerer) *PublisherPrometheusMetrics {
	kafkaPublishDurationHist := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_publisher_duration_seconds",
			Help:    "Duration of Kafka message publishing in seconds.",
			Buckets: []float64{0, 0.0001, 0.001, 0.010, 0.100, 0.200, 0.500, 1, 2, 5, 10, 100, 1000},
		},
		[]string{"topic", "success"},
	)

	kafkaPublishedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_publisher_messages_total",
			Help: "Messages handed to the producer by delivery mode and outcome.",
		},
		[]string{"topic", "delivery_mode", "success"},
	)

	reg.MustRegister(kafkaPublishDurationHist, kafkaPublishedTotal)

	return &PublisherPrometheusMetrics{
		kafkaPublishDurationHist: kafkaPublishDurationHist,
		kafkaPublishedTotal:      kafkaPublishedTotal,
	}
}

func (m *PublisherPrometheusMetrics) GenerateMetrics(startTime time.Time, topic string, processErr error) {
	if m == nil {
		return
	}
	duration := time.Since(startTime).Seconds()

	m.kafkaPublishDurationHist.WithLabelValues(topic, strconv.FormatBool(processErr == nil)).Observe(duration)
}

func (m *PublisherPrometheusMetrics) CountDelivery(topic, deliveryMode string, processErr error) {
	if m == nil {
		return
	}
	m.kafkaPublishedTotal.WithLabelValues(topic, deliveryMode, strconv.FormatBool(processErr == nil)).Inc()
}
