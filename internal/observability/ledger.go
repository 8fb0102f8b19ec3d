package observability

import "github.com/prometheus/client_golang/prometheus"

// LedgerMetrics counts posting and reversal outcomes.
type LedgerMetrics struct {
	postings  *prometheus.CounterVec
	reversals *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger collectors on registerer.
func NewLedgerMetrics(registerer prometheus.Registerer) *LedgerMetrics {
	postings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "palaka_ledger_postings_total",
		Help: "Journal post attempts by result.",
	}, []string{"result"})
	reversals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "palaka_ledger_reversals_total",
		Help: "Journal removals split into reversed postings and deleted drafts.",
	}, []string{"kind"})
	registerer.MustRegister(postings, reversals)
	return &LedgerMetrics{postings: postings, reversals: reversals}
}

func (l *LedgerMetrics) ObservePosting(result string) {
	if l == nil {
		return
	}
	l.postings.WithLabelValues(result).Inc()
}

func (l *LedgerMetrics) ObserveReversal(posted bool) {
	if l == nil {
		return
	}
	kind := "draft_deleted"
	if posted {
		kind = "reversed"
	}
	l.reversals.WithLabelValues(kind).Inc()
}
