package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects prediction counters and latencies.
type Metrics struct {
	Predictions       *prometheus.CounterVec
	ValidationErrors  *prometheus.CounterVec
	InferenceErrors   prometheus.Counter
	UnexpectedLabels  *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec
	PredictDuration   prometheus.Histogram
	RateLimitRejected prometheus.Counter
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Predictions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_predictor_predictions_total",
			Help: "Predictions served, by decision and source",
		}, []string{"decision", "source"}),
		ValidationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_predictor_validation_errors_total",
			Help: "Rejected applications, by field and reason",
		}, []string{"field", "reason"}),
		InferenceErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "loan_predictor_inference_errors_total",
			Help: "Classifier failures",
		}),
		UnexpectedLabels: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_predictor_unexpected_labels_total",
			Help: "Classifier outputs other than 0 or 1",
		}, []string{"label"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_predictor_cache_lookups_total",
			Help: "Prediction cache lookups, by result",
		}, []string{"result"}),
		PredictDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "loan_predictor_predict_duration_seconds",
			Help:    "Duration of a full prediction (assemble, decide, record)",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		RateLimitRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "loan_predictor_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
}

func (m *Metrics) IncrementPrediction(decision, source string) {
	m.Predictions.WithLabelValues(decision, source).Inc()
}

func (m *Metrics) IncrementValidationError(field, reason string) {
	m.ValidationErrors.WithLabelValues(field, reason).Inc()
}

func (m *Metrics) IncrementInferenceError() {
	m.InferenceErrors.Inc()
}

func (m *Metrics) IncrementUnexpectedLabel(label string) {
	m.UnexpectedLabels.WithLabelValues(label).Inc()
}

func (m *Metrics) ObserveCacheLookup(hit bool) {
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) ObservePredict(start time.Time) {
	m.PredictDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementRateLimited() {
	m.RateLimitRejected.Inc()
}
