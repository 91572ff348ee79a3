package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"loan-predictor/domain"
)

// PredictResponse is the body of POST /predict. Success and failure share
// one shape so the form's script can branch on Success alone.
type PredictResponse struct {
	Success      bool            `json:"success"`
	Prediction   domain.Decision `json:"prediction,omitempty"`
	PredictionID string          `json:"prediction_id,omitempty"`
	ModelVersion string          `json:"model_version,omitempty"`
	Error        string          `json:"error,omitempty"`
	Code         string          `json:"code,omitempty"`
	Field        string          `json:"field,omitempty"`
}

const (
	codeBadRequest      = "bad_request"
	codeValidationError = "validation_error"
	codeInferenceError  = "inference_error"
	codeInternalError   = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding error cannot change the status.
	_ = json.NewEncoder(w).Encode(body)
}

// failure translates a prediction error into a user-facing response. The
// cause stays in the logs.
func failure(err error) (int, PredictResponse) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, PredictResponse{
			Error: vErr.Error(),
			Code:  codeValidationError,
			Field: vErr.Field,
		}
	}
	if domain.IsInferenceError(err) {
		return http.StatusUnprocessableEntity, PredictResponse{
			Error: "the model could not score this application",
			Code:  codeInferenceError,
		}
	}
	return http.StatusInternalServerError, PredictResponse{
		Error: "internal error",
		Code:  codeInternalError,
	}
}
