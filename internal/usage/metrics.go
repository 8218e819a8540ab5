package usage

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MeteredLedger forwards records to another Ledger and counts them in Prometheus.
type MeteredLedger struct {
	next    Ledger
	tokens  *prometheus.CounterVec
	records *prometheus.CounterVec
}

// NewMeteredLedger wraps next and registers its collectors on reg.
func NewMeteredLedger(next Ledger, reg prometheus.Registerer) *MeteredLedger {
	m := &MeteredLedger{
		next: next,
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kbchat_tokens_total",
			Help: "Tokens recorded in the usage ledger by operation and token kind.",
		}, []string{"operation", "kind"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kbchat_usage_records_total",
			Help: "Usage records appended to the ledger by operation.",
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.tokens, m.records)
	}
	return m
}

// Append stores the record and, once stored, updates the counters.
func (m *MeteredLedger) Append(ctx context.Context, record Record) error {
	if err := m.next.Append(ctx, record); err != nil {
		return err
	}
	op := string(record.Operation)
	m.records.WithLabelValues(op).Inc()
	m.tokens.WithLabelValues(op, "prompt").Add(float64(record.PromptTokens))
	m.tokens.WithLabelValues(op, "completion").Add(float64(record.CompletionTokens))
	m.tokens.WithLabelValues(op, "embedding").Add(float64(record.EmbeddingTokens))
	return nil
}

var _ Ledger = (*MeteredLedger)(nil)
