package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors the service exposes on /metrics.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	SubmissionsTotal prometheus.Counter
	SubmissionErrors prometheus.Counter
	PollsTotal       prometheus.Counter
	PollErrors       prometheus.Counter
	WizardSessions   prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalpath_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vitalpath_http_request_duration_seconds",
			Help:    "Duration of HTTP request handling",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),

		SubmissionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitalpath_assessments_submitted_total",
			Help: "Total number of submitted assessments",
		}),

		SubmissionErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitalpath_assessment_submit_errors_total",
			Help: "Total number of failed assessment submissions",
		}),

		PollsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitalpath_notifier_polls_total",
			Help: "Total number of notifier polls against the store",
		}),

		PollErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitalpath_notifier_poll_errors_total",
			Help: "Total number of failed notifier polls",
		}),

		WizardSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "vitalpath_wizard_sessions_active",
			Help: "Number of wizard sessions currently held in memory",
		}),
	}
}

// ObservePoll is handed to the notify center as its per-poll callback.
func (m *Metrics) ObservePoll(err error) {
	m.PollsTotal.Inc()
	if err != nil {
		m.PollErrors.Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument wraps a handler with request count and duration collection.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
