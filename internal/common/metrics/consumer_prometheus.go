package metrics

import (
	"errors"
	"time"

	"github.com/Shopify/sarama"
	prometheusmetrics "github.com/deathowl/go-metrics-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	goMetrics "github.com/rcrowley/go-metrics"
)

const (
	OutcomeAcknowledged = "acknowledged"
	OutcomeDuplicate    = "duplicate"
	OutcomeDropped      = "dropped"
	OutcomeRedelivered  = "redelivered"
	OutcomeDeadLettered = "dead_lettered"
)

var consumerBuckets = []float64{0, 0.0001, 0.001, 0.010, 0.100, 0.200, 0.500, 1, 2, 5, 10, 100, 1000}

// ConsumerMetrics tracks how long messages wait in the log and how long a
// discipline takes to reach an outcome for them.
type ConsumerMetrics struct {
	namespace          string
	subsystem          string
	flushInterval      time.Duration
	registerer         prometheus.Registerer
	metrics            goMetrics.Registry
	consumeTimeHist    *prometheus.HistogramVec
	processingTimeHist *prometheus.HistogramVec
	getMessageTimeHist *prometheus.HistogramVec
	batchSizeHist      *prometheus.HistogramVec
}

func NewConsumerMetrics(namespace, subsystem string, flushInterval time.Duration, reg prometheus.Registerer) *ConsumerMetrics {
	appMetrics := goMetrics.NewPrefixedRegistry(namespace + "_")

	consumeTimeHist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kafka_consumer_consume_time",
		Help:    "time from message timestamp until the discipline reached an outcome",
		Buckets: consumerBuckets,
	}, []string{"topic", "consumer_group"})

	processingTimeHist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kafka_consumer_processing_time",
		Help:    "processing time of a message by outcome",
		Buckets: consumerBuckets,
	}, []string{"topic", "outcome", "consumer_group"})

	getMessageTimeHist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kafka_consumer_get_message_time",
		Help:    "time a message waited in the log before processing started",
		Buckets: consumerBuckets,
	}, []string{"topic", "consumer_group"})

	batchSizeHist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kafka_consumer_batch_size",
		Help:    "number of records handed to the batch processor",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	}, []string{"topic", "consumer_group"})

	return &ConsumerMetrics{
		namespace:          namespace,
		subsystem:          subsystem,
		flushInterval:      flushInterval,
		registerer:         reg,
		metrics:            appMetrics,
		consumeTimeHist:    registerHistogramVec(reg, consumeTimeHist),
		processingTimeHist: registerHistogramVec(reg, processingTimeHist),
		getMessageTimeHist: registerHistogramVec(reg, getMessageTimeHist),
		batchSizeHist:      registerHistogramVec(reg, batchSizeHist),
	}
}

// registerHistogramVec reuses the collector of an earlier consumer in the same process.
func registerHistogramVec(reg prometheus.Registerer, hist *prometheus.HistogramVec) *prometheus.HistogramVec {
	err := reg.Register(hist)
	if err == nil {
		return hist
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		if existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec); ok {
			return existing
		}
	}
	panic(err)
}

// Registry is handed to sarama so client level metrics end up in prometheus.
func (m *ConsumerMetrics) Registry() goMetrics.Registry {
	return m.metrics
}

func (m *ConsumerMetrics) Run() {
	prometheusClient := prometheusmetrics.NewPrometheusProvider(
		m.metrics, m.namespace, m.subsystem, m.registerer, m.flushInterval,
	)
	go prometheusClient.UpdatePrometheusMetrics()
}

func (m *ConsumerMetrics) GenerateMetrics(startTime time.Time, message *sarama.ConsumerMessage, outcome string) {
	if m == nil || message == nil {
		return
	}
	endTime := time.Now()

	m.consumeTimeHist.WithLabelValues(message.Topic, m.namespace).
		Observe(endTime.Sub(message.Timestamp).Seconds())

	m.processingTimeHist.WithLabelValues(message.Topic, outcome, m.namespace).
		Observe(endTime.Sub(startTime).Seconds())

	m.getMessageTimeHist.WithLabelValues(message.Topic, m.namespace).
		Observe(startTime.Sub(message.Timestamp).Seconds())
}

func (m *ConsumerMetrics) ObserveBatch(topic string, size int) {
	if m == nil {
		return
	}
	m.batchSizeHist.WithLabelValues(topic, m.namespace).Observe(float64(size))
}
