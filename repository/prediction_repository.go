package repository

import (
	"context"

	"loan-predictor/domain"
)

type PredictionRepository interface {
	Save(ctx context.Context, record domain.PredictionRecord) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.PredictionRecord, error)
}
