package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-predictor/domain"
	"loan-predictor/metrics"
)

func newTestRouter(t *testing.T, limiter *RateLimiter) (http.Handler, *metrics.Metrics) {
	t.Helper()
	handler, _ := newTestHandler(fixedClassifier{label: 1})
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	return NewRouter(RouterConfig{
		Predict:     handler,
		Model:       NewModelHandler(testSchema()),
		RateLimiter: limiter,
		OnLimited:   m.IncrementRateLimited,
		Gatherer:    reg,
		Logger:      discardLogger(),
	}), m
}

func TestRouter_PredictAndRequestID(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(exampleForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Request-ID", "client-id-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "client-id-1", w.Header().Get("X-Request-ID"))
}

func TestRouter_ReplacesInvalidRequestID(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "bad id\nwith newline")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	got := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, got)
	assert.NotContains(t, got, " ")
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/predict", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_Model(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/model", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body modelResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "test-v1", body.Version)
	assert.Equal(t, domain.CanonicalFeatureOrder, body.FeatureOrder)
	assert.Equal(t, []string{"Employed", "Self-Employed", "Unemployed"}, body.Categories[domain.AttrEmploymentStatus])
	assert.Equal(t, 18.0, body.Bounds[domain.AttrAge].Min)
	assert.Equal(t, domain.AttrAge, body.FormFields["age"])
}

func TestRouter_RateLimitOnPredictOnly(t *testing.T) {
	limiter := newRateLimiter(2, time.Minute, time.Now)
	router, _ := newTestRouter(t, limiter)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(exampleForm().Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "loan_predictor_rate_limited_total 1")
}

func TestRecovery_ReturnsInternalError(t *testing.T) {
	handler := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeResponse(t, w.Body)
	assert.False(t, resp.Success)
}

func TestClientKind(t *testing.T) {
	assert.Equal(t, "unknown", clientKind(""))
	assert.Equal(t, "bot", clientKind("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"))
	assert.Equal(t, "browser/firefox", clientKind("Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"))
}

func TestRouter_ModelETag(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/model", nil))
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/model", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())

	other := testSchema()
	other.Version = "test-v2"
	assert.NotEqual(t, etag, NewModelHandler(other).etag)
}
