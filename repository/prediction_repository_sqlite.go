package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"loan-predictor/domain"
)

// PredictionRepositorySQLite keeps the prediction log in a SQLite file.
type PredictionRepositorySQLite struct {
	db *sql.DB
}

// OpenPredictionRepositorySQLite opens (and migrates) the database at path.
func OpenPredictionRepositorySQLite(path string) (*PredictionRepositorySQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	r := &PredictionRepositorySQLite{db: db}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite %s: %w", path, err)
	}
	return r, nil
}

func (r *PredictionRepositorySQLite) migrate() error {
	_, err := r.db.Exec(`
CREATE TABLE IF NOT EXISTS predictions (
  id TEXT PRIMARY KEY,
  decision TEXT NOT NULL,
  model_version TEXT NOT NULL,
  features TEXT NOT NULL,
  request_id TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS predictions_created_at ON predictions(created_at);
`)
	return err
}

func (r *PredictionRepositorySQLite) Save(ctx context.Context, record domain.PredictionRecord) error {
	features, err := json.Marshal(record.Features)
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO predictions (id, decision, model_version, features, request_id, created_at)
VALUES (?, ?, ?, ?, ?, ?);`,
		record.ID,
		string(record.Decision),
		record.ModelVersion,
		string(features),
		record.RequestID,
		record.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert prediction %s: %w", record.ID, err)
	}
	return nil
}

func (r *PredictionRepositorySQLite) Recent(ctx context.Context, limit int) ([]domain.PredictionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, decision, model_version, features, request_id, created_at
FROM predictions
ORDER BY created_at DESC, rowid DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.PredictionRecord
	for rows.Next() {
		var (
			rec       domain.PredictionRecord
			decision  string
			features  string
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &decision, &rec.ModelVersion, &features, &rec.RequestID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if err := json.Unmarshal([]byte(features), &rec.Features); err != nil {
			return nil, fmt.Errorf("decode features of %s: %w", rec.ID, err)
		}
		rec.Decision = domain.Decision(decision)
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return out, nil
}

func (r *PredictionRepositorySQLite) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
