package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"loan-predictor/domain"
	"loan-predictor/metrics"
	"loan-predictor/model"
)

// ErrUnexpectedLabel is wrapped in an InferenceError when strict label
// checking is on and the classifier returns something other than 0 or 1.
var ErrUnexpectedLabel = errors.New("classifier returned an unexpected label")

// DecisionService runs the classifier and maps its label to a Decision.
type DecisionService struct {
	classifier   model.Classifier
	strictLabels bool
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// DecisionOption configures a DecisionService.
type DecisionOption func(*DecisionService)

// WithStrictLabels rejects classifier labels other than 0 and 1 instead of
// reading them as a denial.
func WithStrictLabels(strict bool) DecisionOption {
	return func(s *DecisionService) {
		s.strictLabels = strict
	}
}

func WithDecisionMetrics(m *metrics.Metrics) DecisionOption {
	return func(s *DecisionService) {
		s.metrics = m
	}
}

func WithDecisionLogger(l *slog.Logger) DecisionOption {
	return func(s *DecisionService) {
		s.logger = l
	}
}

// NewDecisionService panics on a nil classifier: the model must be loaded
// before anything is served.
func NewDecisionService(classifier model.Classifier, opts ...DecisionOption) *DecisionService {
	if classifier == nil {
		panic("service.NewDecisionService: classifier is required")
	}
	s := &DecisionService{classifier: classifier}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Decide classifies a single-row vector. Label 1 approves, anything else
// denies. Classifier failures come back as *domain.InferenceError.
func (s *DecisionService) Decide(vector domain.FeatureVector) (domain.Decision, error) {
	labels, err := s.classifier.Predict([][]float32{vector})
	if err != nil {
		return "", s.inferenceError(err)
	}
	if len(labels) != 1 {
		return "", s.inferenceError(fmt.Errorf("classifier returned %d labels for 1 row", len(labels)))
	}

	label := labels[0]
	if label != 0 && label != domain.ApprovedLabel {
		if s.metrics != nil {
			s.metrics.IncrementUnexpectedLabel(strconv.Itoa(label))
		}
		if s.logger != nil {
			s.logger.Warn("classifier returned unexpected label", "label", label, "strict", s.strictLabels)
		}
		if s.strictLabels {
			return "", s.inferenceError(fmt.Errorf("%w: %d", ErrUnexpectedLabel, label))
		}
	}

	return domain.DecisionFromLabel(label), nil
}

func (s *DecisionService) inferenceError(err error) error {
	if s.metrics != nil {
		s.metrics.IncrementInferenceError()
	}
	return &domain.InferenceError{Err: err}
}
