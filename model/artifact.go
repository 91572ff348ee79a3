package model

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"loan-predictor/domain"
)

//go:embed default_model.yaml
var defaultArtifact []byte

const (
	KindForest   = "forest"
	KindLogistic = "logistic"
)

// Artifact is a trained model together with the schema it was trained on.
// Keeping the feature order and encodings next to the classifier means a
// retrained model cannot silently disagree with the inference code.
type Artifact struct {
	Version   string                    `yaml:"version"`
	Features  []string                  `yaml:"features"`
	Encodings map[string]map[string]int `yaml:"encodings"`
	Model     ClassifierSpec            `yaml:"classifier"`

	classifier Classifier
}

// ClassifierSpec is the serialized classifier.
type ClassifierSpec struct {
	Kind      string    `yaml:"kind"`
	Trees     []*Node   `yaml:"trees,omitempty"`
	Weights   []float64 `yaml:"weights,omitempty"`
	Means     []float64 `yaml:"means,omitempty"`
	Scales    []float64 `yaml:"scales,omitempty"`
	Bias      float64   `yaml:"bias,omitempty"`
	Threshold float64   `yaml:"threshold,omitempty"`
}

// Load reads and validates the artifact at path.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	a, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return a, nil
}

// LoadDefault returns the artifact bundled with the binary.
func LoadDefault() (*Artifact, error) {
	return Parse(defaultArtifact)
}

// Parse decodes and validates a YAML artifact.
func Parse(data []byte) (*Artifact, error) {
	var a Artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	c, err := a.Model.build(len(a.Features))
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}
	a.classifier = c
	return &a, nil
}

// Validate checks the artifact schema against the canonical feature order
// and the encoding invariants.
func (a *Artifact) Validate() error {
	if a.Version == "" {
		return errors.New("model artifact has no version")
	}
	if !slices.Equal(a.Features, domain.CanonicalFeatureOrder) {
		return fmt.Errorf("feature order %v does not match %v", a.Features, domain.CanonicalFeatureOrder)
	}
	return domain.EncodingTable(a.Encodings).Validate()
}

// Classifier returns the loaded classifier.
func (a *Artifact) Classifier() Classifier {
	return a.classifier
}

// Schema returns a copy of the schema the model was trained with.
func (a *Artifact) Schema() domain.Schema {
	return domain.Schema{
		Version:      a.Version,
		FeatureOrder: slices.Clone(a.Features),
		Encodings:    domain.EncodingTable(a.Encodings).Clone(),
	}
}

func (s ClassifierSpec) build(width int) (Classifier, error) {
	switch s.Kind {
	case KindForest:
		return NewForest(width, s.Trees)
	case KindLogistic:
		if len(s.Weights) != width {
			return nil, fmt.Errorf("logistic model has %d weights, want %d", len(s.Weights), width)
		}
		return NewLogistic(s.Weights, s.Means, s.Scales, s.Bias, s.Threshold)
	default:
		return nil, fmt.Errorf("unsupported classifier kind %q", s.Kind)
	}
}
