package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/quitbridge-backend/internal/observability"
)

// Hooks captures aggregate-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

const ledgerOpPrefix = "aggregate.progress_ledger."

type metricsHooks struct {
	metrics *observability.Metrics
}

// NewMetricsHooks reports aggregate writes to the prometheus registry.
// Successful ledger writes are also counted by kind (apply_record, ...).
func NewMetricsHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{metrics: metrics}
}

func (h metricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	name = strings.TrimSpace(name)
	h.metrics.ObserveAggregateOperation(name, status, dur)
	if status != "success" {
		return
	}
	if kind, ok := strings.CutPrefix(name, ledgerOpPrefix); ok && kind != "" {
		h.metrics.IncLedgerEvent(kind)
	}
}

func (h metricsHooks) IncConflict(name string) {
	h.metrics.IncAggregateConflict(strings.TrimSpace(name))
}

func (h metricsHooks) IncRetry(name string) {
	h.metrics.IncAggregateRetry(strings.TrimSpace(name))
}
