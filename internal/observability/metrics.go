// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Spin metrics
	SpinsTotal     *prometheus.CounterVec
	SlotHits       *prometheus.CounterVec
	SpinFailures   *prometheus.CounterVec
	SpinRollbacks  *prometheus.CounterVec
	SpinDuration   prometheus.Histogram
	PrizeAmount    *prometheus.CounterVec
	CommissionPaid prometheus.Counter
	RateLimited    prometheus.Counter

	// Purchase metrics
	PurchasesTotal *prometheus.CounterVec
	SpinsPurchased prometheus.Counter
	DailyGrants    prometheus.Counter

	// Scheduler metrics
	JobRuns     *prometheus.CounterVec
	JobDuration *prometheus.HistogramVec

	// Feed metrics
	FeedClients         prometheus.Gauge
	FeedMessagesDropped prometheus.Counter

	// Latency metrics
	RPCCallLatency      *prometheus.HistogramVec
	RPCCallErrors       *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulSpin prometheus.Gauge
	PrizeTableVersion  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil registerer uses the global default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "spin_rewards"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Spin metrics
		SpinsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spin",
			Name:      "spins_total",
			Help:      "Total number of completed spins by prize type",
		}, []string{"prize_type"}),
		SlotHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spin",
			Name:      "slot_hits_total",
			Help:      "Total number of spins landing on each slot",
		}, []string{"slot_index"}),
		SpinFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spin",
			Name:      "failures_total",
			Help:      "Total number of failed spin attempts by reason",
		}, []string{"reason"}),
		SpinRollbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spin",
			Name:      "rollbacks_total",
			Help:      "Total number of spin balance rollbacks by stage and outcome",
		}, []string{"stage", "status"}),
		SpinDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "spin",
			Name:      "duration_seconds",
			Help:      "End-to-end spin execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		PrizeAmount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spin",
			Name:      "prize_amount_total",
			Help:      "Total prize amount awarded by prize type",
		}, []string{"prize_type"}),
		CommissionPaid: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spin",
			Name:      "referral_commission_total",
			Help:      "Total referral commission computed on winning spins",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spin",
			Name:      "rate_limited_total",
			Help:      "Total number of spin attempts rejected by the rate limiter",
		}),

		// Purchase metrics
		PurchasesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purchase",
			Name:      "purchases_total",
			Help:      "Total number of purchase credit attempts by status",
		}, []string{"status"}),
		SpinsPurchased: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purchase",
			Name:      "spins_credited_total",
			Help:      "Total number of spins credited from purchases",
		}),
		DailyGrants: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purchase",
			Name:      "daily_grants_total",
			Help:      "Total number of users granted the daily free spin",
		}),

		// Scheduler metrics
		JobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "runs_total",
			Help:      "Total number of scheduled job runs by status",
		}, []string{"job", "status"}),
		JobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "duration_seconds",
			Help:      "Scheduled job duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"job"}),

		// Feed metrics
		FeedClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "clients",
			Help:      "Number of connected live feed clients",
		}),
		FeedMessagesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "messages_dropped_total",
			Help:      "Total number of feed messages dropped for slow clients",
		}),

		// Latency metrics
		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sui",
			Name:      "rpc_call_latency_seconds",
			Help:      "SUI RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCCallErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sui",
			Name:      "rpc_call_errors_total",
			Help:      "Total number of failed SUI RPC calls",
		}, []string{"method"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulSpin: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_spin_timestamp",
			Help:      "Unix timestamp of last successful spin",
		}),
		PrizeTableVersion: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "prize_table_version",
			Help:      "Version of the prize table currently served",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordSpin records a completed spin.
func RecordSpin(prizeType string, slotIndex int, amount, seconds float64, unixTime int64) {
	DefaultMetrics.SpinsTotal.WithLabelValues(prizeType).Inc()
	DefaultMetrics.SlotHits.WithLabelValues(strconv.Itoa(slotIndex)).Inc()
	DefaultMetrics.PrizeAmount.WithLabelValues(prizeType).Add(amount)
	DefaultMetrics.SpinDuration.Observe(seconds)
	DefaultMetrics.LastSuccessfulSpin.Set(float64(unixTime))
}

// RecordSpinFailure records a rejected or failed spin attempt.
func RecordSpinFailure(reason string) {
	DefaultMetrics.SpinFailures.WithLabelValues(reason).Inc()
}

// RecordRollback records a spin balance rollback attempt.
func RecordRollback(stage string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.SpinRollbacks.WithLabelValues(stage, status).Inc()
}

// RecordCommission adds a referral commission amount.
func RecordCommission(amount float64) {
	if amount > 0 {
		DefaultMetrics.CommissionPaid.Add(amount)
	}
}

// RecordRateLimited increments the rate limited counter.
func RecordRateLimited() {
	DefaultMetrics.RateLimited.Inc()
}

// RecordPurchase records a purchase credit attempt.
func RecordPurchase(status string, spins int64) {
	DefaultMetrics.PurchasesTotal.WithLabelValues(status).Inc()
	if spins > 0 {
		DefaultMetrics.SpinsPurchased.Add(float64(spins))
	}
}

// RecordDailyGrants adds the number of users granted a daily spin.
func RecordDailyGrants(n int64) {
	DefaultMetrics.DailyGrants.Add(float64(n))
}

// RecordJobRun records a scheduled job run.
func RecordJobRun(job string, seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.JobRuns.WithLabelValues(job, status).Inc()
	DefaultMetrics.JobDuration.WithLabelValues(job).Observe(seconds)
}

// UpdateFeedClients sets the connected feed clients gauge.
func UpdateFeedClients(n int) {
	DefaultMetrics.FeedClients.Set(float64(n))
}

// RecordFeedDrop increments the dropped feed messages counter.
func RecordFeedDrop() {
	DefaultMetrics.FeedMessagesDropped.Inc()
}

// UpdatePrizeTableVersion sets the served prize table version gauge.
func UpdatePrizeTableVersion(version int64) {
	DefaultMetrics.PrizeTableVersion.Set(float64(version))
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64, err error) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		DefaultMetrics.RPCCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(method, route string, status int, seconds float64) {
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
