package repository

import (
	"context"
	"sync"

	"loan-predictor/domain"
)

// PredictionRepositoryMemory is an in-memory implementation of PredictionRepository.
type PredictionRepositoryMemory struct {
	mu   sync.RWMutex
	data []domain.PredictionRecord
}

// NewPredictionRepositoryMemory creates a new in-memory prediction repository.
func NewPredictionRepositoryMemory() *PredictionRepositoryMemory {
	return &PredictionRepositoryMemory{
		data: []domain.PredictionRecord{},
	}
}

// Save stores the prediction in memory.
func (r *PredictionRepositoryMemory) Save(
	_ context.Context,
	record domain.PredictionRecord,
) error {
	record.Features = record.Features.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, record)
	return nil
}

// Recent returns up to limit records, newest first.
func (r *PredictionRepositoryMemory) Recent(
	_ context.Context,
	limit int,
) ([]domain.PredictionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.data) {
		limit = len(r.data)
	}
	out := make([]domain.PredictionRecord, 0, limit)
	for i := len(r.data) - 1; i >= 0 && len(out) < limit; i-- {
		rec := r.data[i]
		rec.Features = rec.Features.Clone()
		out = append(out, rec)
	}
	return out, nil
}
