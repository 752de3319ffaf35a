package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recovery request outcomes
const (
	OutcomeCreated   = "created"
	OutcomeReused    = "reused"
	OutcomeEphemeral = "ephemeral"
	OutcomeForbidden = "forbidden"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
)

// Email delivery results
const (
	EmailSent   = "sent"
	EmailFailed = "failed"
)

// Recorder is safe to use as nil pointer, it records nothing then
type Recorder struct {
	requests *prometheus.CounterVec
	emails   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers service metrics along with standard process and go metrics
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabnews",
			Name:      "recovery_requests_total",
			Help:      "Number of handled recovery requests by lookup mode and outcome.",
		}, []string{"mode", "outcome"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabnews",
			Name:      "recovery_emails_total",
			Help:      "Number of recovery emails handed to transport by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "http",
			Name:      "request_duration_seconds",
			Help:      "A histogram of duration, in seconds, handling HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"path", "method", "code"}),
	}

	reg.MustRegister(r.requests, r.emails, r.duration)
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())

	return r
}

func (r *Recorder) RecoveryRequested(mode string, outcome string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(mode, outcome).Inc()
}

func (r *Recorder) EmailDelivered(result string) {
	if r == nil {
		return
	}
	r.emails.WithLabelValues(result).Inc()
}

// Instrument observes duration of requests served by h under path label
func (r *Recorder) Instrument(path string, h http.Handler) http.Handler {
	if r == nil {
		return h
	}
	observer := r.duration.MustCurryWith(prometheus.Labels{"path": path})
	return promhttp.InstrumentHandlerDuration(observer, h)
}

// Handler serves metrics gathered by registry
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.InstrumentMetricHandler(reg, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}
