// Package metrics exposes Prometheus instruments for the purchase path.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Purchase outcomes used as the "outcome" label.
const (
	OutcomeCommitted    = "committed"
	OutcomeInsufficient = "insufficient_stock"
	OutcomeInvalid      = "invalid_quantity"
	OutcomeNotFound     = "not_found"
	OutcomeTransient    = "transient_conflict"
	OutcomeError        = "error"
)

// Purchases counts purchase attempts by outcome and times them.
type Purchases struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	retries  prometheus.Counter
	seats    prometheus.Counter
}

// NewPurchases creates the instruments and registers them on reg.
func NewPurchases(reg prometheus.Registerer) *Purchases {
	p := &Purchases{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticketing_purchases_total",
			Help: "Purchase calls by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ticketing_purchase_duration_seconds",
			Help:    "Wall time of a purchase call including retries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketing_purchase_retries_total",
			Help: "Transaction retries after a lock wait timeout or deadlock.",
		}),
		seats: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketing_seats_sold_total",
			Help: "Seats sold by committed purchases.",
		}),
	}
	reg.MustRegister(p.total, p.duration, p.retries, p.seats)
	return p
}

// Observe records one finished purchase call.
func (p *Purchases) Observe(outcome string, seats int, took time.Duration) {
	p.total.WithLabelValues(outcome).Inc()
	p.duration.WithLabelValues(outcome).Observe(took.Seconds())
	if outcome == OutcomeCommitted && seats > 0 {
		p.seats.Add(float64(seats))
	}
}

// Retry records one retried transaction.
func (p *Purchases) Retry() { p.retries.Inc() }
