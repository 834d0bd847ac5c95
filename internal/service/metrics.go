package service

import (
	"errors"
	"time"

	"wallet_ledger/internal/custom_err"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	flowTopup             = "topup"
	flowWithdrawal        = "withdrawal"
	flowWithdrawalRequest = "withdrawal_request"

	cacheResultHit   = "hit"
	cacheResultMiss  = "miss"
	cacheResultError = "error"
)

// Metrics собирает счетчики сервиса. Нулевой указатель допустим: все
// методы тогда ничего не делают.
type Metrics struct {
	reconciliations *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	relayFlushes    prometheus.Counter
	relayFailures   prometheus.Counter
	relayPublished  prometheus.Counter
	relayRetries    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_reconciliations_total",
			Help: "Reconciliation attempts by flow and result.",
		}, []string{"flow", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wallet_reconciliation_duration_seconds",
			Help:    "Reconciliation latency including lock wait.",
			Buckets: prometheus.DefBuckets,
		}, []string{"flow"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_cache_lookups_total",
			Help: "Wallet cache lookups by result.",
		}, []string{"result"}),
		relayFlushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wallet_outbox_flushes_total",
			Help: "Outbox relay batches processed.",
		}),
		relayFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wallet_outbox_flush_failures_total",
			Help: "Outbox relay batches that failed to publish.",
		}),
		relayPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wallet_outbox_events_published_total",
			Help: "Balance events published to the broker.",
		}),
		relayRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wallet_outbox_retries_total",
			Help: "Outbox relay publish retries.",
		}),
	}
	reg.MustRegister(m.reconciliations, m.duration, m.cacheLookups,
		m.relayFlushes, m.relayFailures, m.relayPublished, m.relayRetries)
	return m
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "applied"
	case errors.Is(err, custom_err.ErrDuplicateRequest):
		return "duplicate"
	case errors.Is(err, custom_err.ErrValidation):
		return "invalid"
	case errors.Is(err, custom_err.ErrNotFound):
		return "not_found"
	case errors.Is(err, custom_err.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, custom_err.ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, custom_err.ErrLockTimeout):
		return "lock_timeout"
	default:
		return "error"
	}
}

func (m *Metrics) observeReconciliation(flow string, err error, start time.Time) {
	if m == nil {
		return
	}
	m.reconciliations.WithLabelValues(flow, resultLabel(err)).Inc()
	m.duration.WithLabelValues(flow).Observe(time.Since(start).Seconds())
}

func (m *Metrics) cacheLookup(result string) {
	if m != nil {
		m.cacheLookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) relayFlushed(published int) {
	if m == nil {
		return
	}
	m.relayFlushes.Inc()
	m.relayPublished.Add(float64(published))
}

func (m *Metrics) relayFailed() {
	if m != nil {
		m.relayFailures.Inc()
	}
}

func (m *Metrics) relayRetried() {
	if m != nil {
		m.relayRetries.Inc()
	}
}
