package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes request metrics plus the engine counters on /metrics.
// It satisfies both the middleware observer and app.EngineMetrics.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec

	jobsPosted    prometheus.Counter
	jobsFilled    *prometheus.CounterVec
	jobsCompleted prometheus.Counter
	jobsCancelled prometheus.Counter
	settlements   prometheus.Counter
	payments      prometheus.Counter
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	c := &Collector{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quickgig_http_requests_total",
			Help: "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quickgig_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quickgig_errors_total",
			Help: "Error responses by error code.",
		}, []string{"code"}),
		jobsPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quickgig_jobs_posted_total",
			Help: "Jobs posted.",
		}),
		jobsFilled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quickgig_jobs_filled_total",
			Help: "Jobs filled, by whether pay was negotiated.",
		}, []string{"negotiated"}),
		jobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quickgig_jobs_completed_total",
			Help: "Jobs completed.",
		}),
		jobsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quickgig_jobs_cancelled_total",
			Help: "Jobs cancelled.",
		}),
		settlements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quickgig_settlements_total",
			Help: "Wallet entries created by settlement.",
		}),
		payments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quickgig_payments_total",
			Help: "Wallet entries marked paid.",
		}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		c.requestsTotal, c.requestDuration, c.errorsTotal,
		c.jobsPosted, c.jobsFilled, c.jobsCompleted, c.jobsCancelled,
		c.settlements, c.payments,
	)
	return c
}

func (c *Collector) ObserveRequest(method string, status int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (c *Collector) ObserveError(code string) {
	c.errorsTotal.WithLabelValues(code).Inc()
}

func (c *Collector) JobPosted() { c.jobsPosted.Inc() }

func (c *Collector) JobFilled(hadNegotiation bool) {
	c.jobsFilled.WithLabelValues(strconv.FormatBool(hadNegotiation)).Inc()
}

func (c *Collector) JobCompleted()       { c.jobsCompleted.Inc() }
func (c *Collector) JobCancelled()       { c.jobsCancelled.Inc() }
func (c *Collector) SettlementRecorded() { c.settlements.Inc() }
func (c *Collector) PaymentRecorded()    { c.payments.Inc() }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
