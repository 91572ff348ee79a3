package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"loan-predictor/domain"
	"loan-predictor/service"
)

// ModelHandler serves the loaded model's schema. The schema never changes
// while the process runs, so the body and its ETag are computed once.
type ModelHandler struct {
	body []byte
	etag string
}

func NewModelHandler(schema domain.Schema) *ModelHandler {
	categories := make(map[string][]string, len(domain.CategoricalAttributes))
	for _, attr := range domain.CategoricalAttributes {
		categories[attr] = schema.Encodings.Labels(attr)
	}
	body, err := json.Marshal(modelResponse{
		Version:      schema.Version,
		FeatureOrder: schema.FeatureOrder,
		Categories:   categories,
		Bounds:       service.InputBounds,
		FormFields:   formFields,
	})
	if err != nil {
		panic("http.NewModelHandler: " + err.Error())
	}
	return &ModelHandler{
		body: body,
		etag: `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`,
	}
}

type modelResponse struct {
	Version      string                   `json:"version"`
	FeatureOrder []string                 `json:"feature_order"`
	Categories   map[string][]string      `json:"categories"`
	Bounds       map[string]service.Bound `json:"bounds"`
	FormFields   map[string]string        `json:"form_fields"`
}

// Describe returns what a front-end needs to render an input form: the
// category labels in code order, numeric bounds and field names.
func (h *ModelHandler) Describe(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", h.etag)
	if r.Header.Get("If-None-Match") == h.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.body)
}
