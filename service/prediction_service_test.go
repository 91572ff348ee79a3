package service

import (
	"context"
	"errors"
	"math"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/suite"

	"loan-predictor/domain"
	"loan-predictor/metrics"
	"loan-predictor/repository"
	"loan-predictor/requestcontext"
)

type failingRepository struct {
	saves int
}

func (r *failingRepository) Save(context.Context, domain.PredictionRecord) error {
	r.saves++
	return errors.New("disk full")
}

func (r *failingRepository) Recent(context.Context, int) ([]domain.PredictionRecord, error) {
	return nil, errors.New("disk full")
}

// brokenCache fails every call, like an unreachable cache server.
type brokenCache struct {
	gets, sets int
}

func (c *brokenCache) Get(context.Context, string) (string, bool, error) {
	c.gets++
	return "", false, errors.New("connection refused")
}

func (c *brokenCache) Set(context.Context, string, string) error {
	c.sets++
	return errors.New("connection refused")
}

type PredictionServiceSuite struct {
	suite.Suite
	classifier *stubClassifier
	repo       *repository.PredictionRepositoryMemory
	cache      *repository.MemoryCache
	metrics    *metrics.Metrics
	now        time.Time
	service    *PredictionService
}

func TestPredictionServiceSuite(t *testing.T) {
	suite.Run(t, new(PredictionServiceSuite))
}

func (s *PredictionServiceSuite) SetupTest() {
	s.classifier = &stubClassifier{labels: []int{1}}
	s.repo = repository.NewPredictionRepositoryMemory()
	s.cache = repository.NewMemoryCache(time.Minute, time.Minute)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	s.service = NewPredictionService(testSchema(),
		NewDecisionService(s.classifier),
		s.repo,
		WithCache(s.cache),
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *PredictionServiceSuite) TestPredictApproved() {
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	ctx = requestcontext.WithSource(ctx, requestcontext.SourceWeb)

	result, err := s.service.Predict(ctx, exampleAttributes())

	s.Require().NoError(err)
	s.Equal(domain.DecisionApproved, result.Decision)
	s.Equal("test-v1", result.ModelVersion)
	s.Equal(exampleVector(), result.Features)
	s.False(result.Cached)
	s.NotEmpty(result.ID)
	s.Equal(s.now, result.PredictedAt)

	records, err := s.repo.Recent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(result.ID, records[0].ID)
	s.Equal("req-1", records[0].RequestID)
	s.Equal(domain.DecisionApproved, records[0].Decision)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Predictions.WithLabelValues("approved", "web")))
}

func (s *PredictionServiceSuite) TestPredictDenied() {
	s.classifier.labels = []int{0}

	result, err := s.service.Predict(context.Background(), exampleAttributes())

	s.Require().NoError(err)
	s.Equal(domain.DecisionDenied, result.Decision)
}

func (s *PredictionServiceSuite) TestCacheHitSkipsClassifier() {
	first, err := s.service.Predict(context.Background(), exampleAttributes())
	s.Require().NoError(err)

	second, err := s.service.Predict(context.Background(), exampleAttributes())
	s.Require().NoError(err)

	s.Equal(1, s.classifier.calls)
	s.False(first.Cached)
	s.True(second.Cached)
	s.Equal(first.Decision, second.Decision)
	s.NotEqual(first.ID, second.ID)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("hit")))
}

func (s *PredictionServiceSuite) TestDifferentVectorsDoNotShareCache() {
	_, err := s.service.Predict(context.Background(), exampleAttributes())
	s.Require().NoError(err)

	other := exampleAttributes()
	other[domain.AttrCreditScore] = 501.0
	_, err = s.service.Predict(context.Background(), other)
	s.Require().NoError(err)

	s.Equal(2, s.classifier.calls)
}

func (s *PredictionServiceSuite) TestCorruptCacheEntryIsIgnored() {
	key := s.service.cacheKey(exampleVector())
	s.Require().NoError(s.cache.Set(context.Background(), key, "maybe"))

	result, err := s.service.Predict(context.Background(), exampleAttributes())

	s.Require().NoError(err)
	s.False(result.Cached)
	s.Equal(1, s.classifier.calls)
}

func (s *PredictionServiceSuite) TestValidationErrorNeverReachesClassifier() {
	raw := exampleAttributes()
	raw[domain.AttrMaritalStatus] = "Engaged"

	result, err := s.service.Predict(context.Background(), raw)

	s.True(domain.IsValidationError(err))
	s.Equal(domain.PredictionResult{}, result)
	s.Zero(s.classifier.calls)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ValidationErrors.WithLabelValues("MaritalStatus", "unknown_category")))

	records, _ := s.repo.Recent(context.Background(), 0)
	s.Empty(records)
}

func (s *PredictionServiceSuite) TestInferenceErrorIsNotCached() {
	s.classifier.err = errors.New("boom")

	_, err := s.service.Predict(context.Background(), exampleAttributes())
	s.True(domain.IsInferenceError(err))
	s.Zero(s.cache.Len())

	s.classifier.err = nil
	result, err := s.service.Predict(context.Background(), exampleAttributes())
	s.Require().NoError(err)
	s.False(result.Cached)
}

func (s *PredictionServiceSuite) TestRepositoryFailureDoesNotFailPrediction() {
	repo := &failingRepository{}
	svc := NewPredictionService(testSchema(), NewDecisionService(s.classifier), repo)

	result, err := svc.Predict(context.Background(), exampleAttributes())

	s.Require().NoError(err)
	s.Equal(domain.DecisionApproved, result.Decision)
	s.Equal(1, repo.saves)
}

func (s *PredictionServiceSuite) TestCacheKeyIncludesModelVersion() {
	other := testSchema()
	other.Version = "test-v2"
	svc := NewPredictionService(other, NewDecisionService(s.classifier), s.repo)

	s.NotEqual(s.service.cacheKey(exampleVector()), svc.cacheKey(exampleVector()))
	s.Equal(s.service.cacheKey(exampleVector()), s.service.cacheKey(exampleVector()))
}

func (s *PredictionServiceSuite) TestRequiresDependencies() {
	s.Panics(func() { NewPredictionService(testSchema(), nil, s.repo) })
	s.Panics(func() { NewPredictionService(testSchema(), NewDecisionService(s.classifier), nil) })
}

func (s *PredictionServiceSuite) TestBrokenCacheStillDecides() {
	cache := &brokenCache{}
	svc := NewPredictionService(testSchema(), NewDecisionService(s.classifier), s.repo,
		WithCache(cache),
		WithMetrics(s.metrics),
	)

	result, err := svc.Predict(context.Background(), exampleAttributes())

	s.Require().NoError(err)
	s.Equal(domain.DecisionApproved, result.Decision)
	s.False(result.Cached)
	s.Equal(1, cache.gets)
	s.Equal(1, cache.sets)
	s.Equal(1, s.classifier.calls)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("miss")))
}

func (s *PredictionServiceSuite) TestUnresponsiveRedisCostsOnlyItsTimeout() {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	defer func() { _ = ln.Close() }()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			defer func() { _ = c.Close() }()
		}
	}()

	cache := repository.NewRedisCache(ln.Addr().String(), time.Minute, 50*time.Millisecond)
	defer func() { _ = cache.Close() }()
	svc := NewPredictionService(testSchema(), NewDecisionService(s.classifier), s.repo, WithCache(cache))

	start := time.Now()
	result, err := svc.Predict(context.Background(), exampleAttributes())

	s.Require().NoError(err)
	s.Equal(domain.DecisionApproved, result.Decision)
	s.Less(time.Since(start), time.Second)
}

func (s *PredictionServiceSuite) TestLatencyIgnoresInjectedClock() {
	s.now = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

	result, err := s.service.Predict(context.Background(), exampleAttributes())
	s.Require().NoError(err)

	s.Equal(s.now, result.PredictedAt)

	s.Equal(1, testutil.CollectAndCount(s.metrics.PredictDuration))
	s.Less(histogramSum(s.T(), s.metrics), 1.0)
}

func (s *PredictionServiceSuite) TestCacheKeyIsTheExactVector() {
	key := s.service.cacheKey(exampleVector())

	s.Equal("test-v1:", key[:len("test-v1:")])
	s.Len(key, len("test-v1:")+2*4*domain.FeatureCount)

	near := exampleVector()
	near[8] = math.Nextafter32(near[8], 1)
	s.NotEqual(key, s.service.cacheKey(near))
}

func histogramSum(t *testing.T, m *metrics.Metrics) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.PredictDuration.Write(&out); err != nil {
		t.Fatal(err)
	}
	return out.GetHistogram().GetSampleSum()
}
