package service

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"loan-predictor/domain"
	"loan-predictor/metrics"
	"loan-predictor/repository"
	"loan-predictor/requestcontext"
)

const tracerName = "loan-predictor/service"

// PredictionService is the one entry point every front-end uses:
// raw attributes in, decision out.
type PredictionService struct {
	assembler *Assembler
	decider   *DecisionService
	version   string
	repo      repository.PredictionRepository
	cache     repository.CacheRepository
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// Option configures a PredictionService.
type Option func(*PredictionService)

func WithCache(c repository.CacheRepository) Option {
	return func(s *PredictionService) {
		s.cache = c
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *PredictionService) {
		s.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *PredictionService) {
		s.logger = l
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *PredictionService) {
		s.now = now
	}
}

// NewPredictionService creates a new PredictionService for the model
// described by schema.
func NewPredictionService(
	schema domain.Schema,
	decider *DecisionService,
	repo repository.PredictionRepository,
	opts ...Option,
) *PredictionService {
	if decider == nil {
		panic("service.NewPredictionService: decision service is required")
	}
	if repo == nil {
		panic("service.NewPredictionService: prediction repository is required")
	}
	s := &PredictionService{
		assembler: NewAssembler(schema),
		decider:   decider,
		version:   schema.Version,
		repo:      repo,
		cache:     repository.NewNoopCache(),
		logger:    slog.New(slog.DiscardHandler),
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ModelVersion returns the version of the model behind this service.
func (s *PredictionService) ModelVersion() string {
	return s.version
}

// Predict assembles raw into a feature vector and classifies it. Errors are
// *domain.ValidationError or *domain.InferenceError; no partial result is
// ever returned.
func (s *PredictionService) Predict(
	ctx context.Context,
	raw domain.RawAttributes,
) (domain.PredictionResult, error) {
	started := time.Now()
	at := s.now()
	source := requestcontext.Source(ctx)
	ctx, span := s.tracer.Start(ctx, "PredictionService.Predict",
		trace.WithAttributes(
			attribute.String("model.version", s.version),
			attribute.String("source", source),
		),
	)
	defer span.End()
	if s.metrics != nil {
		defer s.metrics.ObservePredict(started)
	}

	vector, err := s.assembler.Assemble(raw)
	if err != nil {
		s.recordFailure(ctx, span, err)
		return domain.PredictionResult{}, err
	}

	key := s.cacheKey(vector)
	decision, cached := s.lookup(ctx, key)
	if !cached {
		decision, err = s.decider.Decide(vector)
		if err != nil {
			s.recordFailure(ctx, span, err)
			return domain.PredictionResult{}, err
		}
		if err := s.cache.Set(ctx, key, string(decision)); err != nil {
			s.logger.WarnContext(ctx, "failed to cache prediction", "error", err)
		}
	}

	result := domain.PredictionResult{
		ID:           uuid.NewString(),
		Decision:     decision,
		ModelVersion: s.version,
		Features:     vector,
		Cached:       cached,
		PredictedAt:  at,
	}

	// Recording is best effort; the decision stands without it.
	record := domain.PredictionRecord{
		ID:           result.ID,
		Decision:     decision,
		ModelVersion: s.version,
		Features:     vector,
		RequestID:    requestcontext.RequestID(ctx),
		CreatedAt:    at,
	}
	if err := s.repo.Save(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "failed to save prediction", "error", err, "prediction_id", result.ID)
	}

	span.SetAttributes(
		attribute.String("decision", string(decision)),
		attribute.Bool("cached", cached),
	)
	if s.metrics != nil {
		s.metrics.IncrementPrediction(string(decision), source)
	}
	s.logger.InfoContext(ctx, "prediction served",
		"prediction_id", result.ID,
		"decision", decision,
		"cached", cached,
		"source", source,
		"request_id", record.RequestID,
	)

	return result, nil
}

// Recent returns the latest recorded predictions.
func (s *PredictionService) Recent(ctx context.Context, limit int) ([]domain.PredictionRecord, error) {
	return s.repo.Recent(ctx, limit)
}

// lookup treats a cache failure as a miss.
func (s *PredictionService) lookup(ctx context.Context, key string) (domain.Decision, bool) {
	val, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "prediction cache unavailable", "error", err)
		ok = false
	}
	if ok && val != string(domain.DecisionApproved) && val != string(domain.DecisionDenied) {
		ok = false
	}
	if s.metrics != nil {
		s.metrics.ObserveCacheLookup(ok)
	}
	if !ok {
		return "", false
	}
	return domain.Decision(val), true
}

// cacheKey spells out the exact float32 bit patterns, so two vectors share
// an entry only when they are identical.
func (s *PredictionService) cacheKey(vector domain.FeatureVector) string {
	buf := make([]byte, 4*len(vector))
	for i, x := range vector {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return s.version + ":" + hex.EncodeToString(buf)
}

func (s *PredictionService) recordFailure(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		if s.metrics != nil {
			s.metrics.IncrementValidationError(vErr.Field, string(vErr.Reason))
		}
		s.logger.InfoContext(ctx, "application rejected",
			"field", vErr.Field,
			"reason", vErr.Reason,
			"error", vErr.Err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	s.logger.ErrorContext(ctx, "prediction failed",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}
