package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/atmledger/internal/domain"
)

// Metrics holds all Prometheus metrics and implements usecase.MetricsRecorder.
type Metrics struct {
	// Ledger metrics
	AccountsCreated prometheus.Counter

	// Ingestion metrics
	Transactions       *prometheus.CounterVec
	LinesSkipped       *prometheus.CounterVec
	TransactionsFailed *prometheus.CounterVec
	SourcesUnavailable prometheus.Counter
	SourceDuration     prometheus.Histogram

	// Run metrics
	RunsCompleted prometheus.Counter
	RunDuration   prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
}

// New creates all metrics and registers them with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics and registers them with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Ledger metrics
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "atmledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		// Ingestion metrics
		Transactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atmledger_transactions_applied_total",
				Help: "Total transactions applied by operation",
			},
			[]string{"operation"},
		),
		LinesSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atmledger_lines_skipped_total",
				Help: "Total source lines skipped by reason",
			},
			[]string{"reason"},
		),
		TransactionsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atmledger_transactions_failed_total",
				Help: "Total transactions rejected because the amount did not parse",
			},
			[]string{"source"},
		),
		SourcesUnavailable: factory.NewCounter(prometheus.CounterOpts{
			Name: "atmledger_sources_unavailable_total",
			Help: "Total sources that could not be opened",
		}),
		SourceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "atmledger_source_duration_seconds",
			Help:    "Duration of ingesting a single source",
			Buckets: prometheus.DefBuckets,
		}),

		// Run metrics
		RunsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "atmledger_runs_completed_total",
			Help: "Total number of completed runs",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "atmledger_run_duration_seconds",
			Help:    "Duration of a run from start to barrier",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atmledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atmledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "atmledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
	}
}

// AccountCreated counts a newly created account.
func (m *Metrics) AccountCreated() {
	m.AccountsCreated.Inc()
}

// SourceIngested adds the counts of one finished worker.
func (m *Metrics) SourceIngested(stats domain.IngestStats) {
	if stats.Unavailable {
		m.SourcesUnavailable.Inc()
	}

	m.Transactions.WithLabelValues(string(domain.OpDeposit)).Add(float64(stats.Deposits))
	m.Transactions.WithLabelValues(string(domain.OpWithdraw)).Add(float64(stats.Withdrawals))
	m.LinesSkipped.WithLabelValues("ignored").Add(float64(stats.Ignored))
	m.LinesSkipped.WithLabelValues("malformed").Add(float64(stats.Malformed))
	m.TransactionsFailed.WithLabelValues(stats.Source).Add(float64(stats.Failed))
	m.SourceDuration.Observe(stats.Elapsed.Seconds())
}

// RunCompleted records a finished run.
func (m *Metrics) RunCompleted(elapsed time.Duration) {
	m.RunsCompleted.Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}
