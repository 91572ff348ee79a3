package domain

import "time"

// Decision is the human readable outcome of a prediction.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionDenied   Decision = "denied"
)

// ApprovedLabel is the classifier output that means approval. It was fixed
// when the model was trained.
const ApprovedLabel = 1

// DecisionFromLabel maps a classifier label to a Decision. Only ApprovedLabel
// approves; every other label denies.
func DecisionFromLabel(label int) Decision {
	if label == ApprovedLabel {
		return DecisionApproved
	}
	return DecisionDenied
}

// Approved reports whether d is an approval.
func (d Decision) Approved() bool {
	return d == DecisionApproved
}

// PredictionResult is returned to every front-end.
type PredictionResult struct {
	ID           string        `json:"id"`
	Decision     Decision      `json:"decision"`
	ModelVersion string        `json:"model_version"`
	Features     FeatureVector `json:"features"`
	Cached       bool          `json:"cached"`
	PredictedAt  time.Time     `json:"predicted_at"`
}

// PredictionRecord is the stored trace of a prediction.
type PredictionRecord struct {
	ID           string
	Decision     Decision
	ModelVersion string
	Features     FeatureVector
	RequestID    string
	CreatedAt    time.Time
}
