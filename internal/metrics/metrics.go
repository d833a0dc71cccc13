package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	outcomeRecordsDesc = prometheus.NewDesc(
		"autoreply_outcome_records",
		"Recorded review outcomes by status",
		[]string{"status"},
		nil,
	)

	// OutcomesTotal counts processed review events by resulting status.
	OutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autoreply_outcomes_total",
		Help: "Processed review events by outcome status",
	}, []string{"status"})

	// ReplyPostDuration observes the latency of reply posts to the review platform.
	ReplyPostDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "autoreply_reply_post_duration_seconds",
		Help:    "Duration of reply post requests",
		Buckets: prometheus.DefBuckets,
	})
)

// StatusCounter reports recorded outcomes per status.
type StatusCounter interface {
	CountOutcomesByStatus(ctx context.Context) (map[string]int64, error)
}

// OutcomeCollector is a custom Prometheus collector that reads outcome
// counts from the database on each scrape.
type OutcomeCollector struct {
	store StatusCounter
	log   *zap.Logger
}

// NewOutcomeCollector creates a collector over store.
func NewOutcomeCollector(store StatusCounter, log *zap.Logger) *OutcomeCollector {
	if log == nil {
		log = zap.NewNop()
	}
	return &OutcomeCollector{store: store, log: log}
}

// Describe sends the metric descriptor to the channel.
func (c *OutcomeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- outcomeRecordsDesc
}

// Collect queries the database for outcome counts and emits them as gauges.
func (c *OutcomeCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := c.store.CountOutcomesByStatus(ctx)
	if err != nil {
		c.log.Error("failed to collect outcome metrics", zap.Error(err))
		return
	}
	for status, n := range counts {
		ch <- prometheus.MustNewConstMetric(
			outcomeRecordsDesc,
			prometheus.GaugeValue,
			float64(n),
			status,
		)
	}
}

var initOnce sync.Once

// Init registers the collectors with the default registry.
// Must be called once at startup.
func Init(store StatusCounter, log *zap.Logger) {
	initOnce.Do(func() {
		prometheus.MustRegister(OutcomesTotal, ReplyPostDuration, NewOutcomeCollector(store, log))
	})
}

// RecordOutcome counts one processed event with the given status.
func RecordOutcome(status string) {
	OutcomesTotal.WithLabelValues(status).Inc()
}
