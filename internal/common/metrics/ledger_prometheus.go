package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/francois202/gigabanksystem1-sub000/internal/models"
)

type LedgerPrometheusMetrics struct {
	ledgerOperations *prometheus.CounterVec
	ledgerMovements  *prometheus.CounterVec
}

func newLedgerPrometheusMetrics(reg prometheus.Registerer) *LedgerPrometheusMetrics {
	mtc := &LedgerPrometheusMetrics{
		ledgerOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Number of ledger updates by transaction kind",
			},
			[]string{"kind"},
		),
		ledgerMovements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_movements_total",
				Help: "Sum of amounts moved by transaction kind",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(mtc.ledgerOperations)
	reg.MustRegister(mtc.ledgerMovements)

	return mtc
}

func (m *LedgerPrometheusMetrics) Record(updates ...models.LedgerUpdate) {
	if m == nil {
		return
	}

	for _, u := range updates {
		kind := string(u.Kind)
		m.ledgerOperations.WithLabelValues(kind).Inc()
		m.ledgerMovements.WithLabelValues(kind).Add(u.Amount.InexactFloat64())
	}
}
