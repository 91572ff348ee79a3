package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"loan-predictor/domain"
	"loan-predictor/requestcontext"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 500
)

// Predictor is the prediction core as seen by the web front-end.
type Predictor interface {
	Predict(ctx context.Context, raw domain.RawAttributes) (domain.PredictionResult, error)
	Recent(ctx context.Context, limit int) ([]domain.PredictionRecord, error)
}

type PredictHandler struct {
	service Predictor
	logger  *slog.Logger
}

func NewPredictHandler(service Predictor, logger *slog.Logger) *PredictHandler {
	return &PredictHandler{service: service, logger: logger}
}

// Predict handles the web form submission.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	ctx := requestcontext.WithSource(r.Context(), requestcontext.SourceWeb)
	requestID := requestcontext.RequestID(ctx)

	raw, err := readAttributes(w, r)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read prediction request", "error", err, "request_id", requestID)
		writeJSON(w, http.StatusBadRequest, PredictResponse{
			Error: "invalid request body",
			Code:  codeBadRequest,
		})
		return
	}

	result, err := h.service.Predict(ctx, raw)
	if err != nil {
		status, body := failure(err)
		writeJSON(w, status, body)
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{
		Success:      true,
		Prediction:   result.Decision,
		PredictionID: result.ID,
		ModelVersion: result.ModelVersion,
	})
}

type predictionView struct {
	ID           string          `json:"id"`
	Decision     domain.Decision `json:"decision"`
	ModelVersion string          `json:"model_version"`
	Features     []float32       `json:"features"`
	RequestID    string          `json:"request_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Recent lists the latest predictions.
func (h *PredictHandler) Recent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "limit must be a positive integer",
			})
			return
		}
		limit = min(n, maxRecentLimit)
	}

	records, err := h.service.Recent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list predictions failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	views := make([]predictionView, 0, len(records))
	for _, rec := range records {
		views = append(views, predictionView{
			ID:           rec.ID,
			Decision:     rec.Decision,
			ModelVersion: rec.ModelVersion,
			Features:     rec.Features,
			RequestID:    rec.RequestID,
			CreatedAt:    rec.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": views})
}
