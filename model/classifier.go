package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrShape is returned when a row does not have the width the classifier
// was trained with.
var ErrShape = errors.New("feature matrix has the wrong shape")

// Classifier predicts one integer class label per input row.
// Implementations are immutable after load and safe for concurrent use.
type Classifier interface {
	Predict(rows [][]float32) ([]int, error)
}

func checkShape(rows [][]float32, width int) error {
	if len(rows) == 0 {
		return fmt.Errorf("%w: no rows", ErrShape)
	}
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrShape, i, len(row), width)
		}
		for j, x := range row {
			if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
				return fmt.Errorf("%w: row %d feature %d is not finite", ErrShape, i, j)
			}
		}
	}
	return nil
}

// Node is one node of a binary decision tree. A node with Leaf set is
// terminal and yields Label; otherwise rows with row[Feature] <= Threshold
// go Left, the rest go Right.
type Node struct {
	Leaf      bool    `yaml:"leaf,omitempty"`
	Label     int     `yaml:"label,omitempty"`
	Feature   int     `yaml:"feature,omitempty"`
	Threshold float32 `yaml:"threshold,omitempty"`
	Left      *Node   `yaml:"left,omitempty"`
	Right     *Node   `yaml:"right,omitempty"`
}

func (n *Node) validate(width int) error {
	if n == nil {
		return errors.New("tree node is empty")
	}
	if n.Leaf {
		return nil
	}
	if n.Feature < 0 || n.Feature >= width {
		return fmt.Errorf("split on feature %d, model has %d features", n.Feature, width)
	}
	if err := n.Left.validate(width); err != nil {
		return err
	}
	return n.Right.validate(width)
}

func (n *Node) predict(row []float32) int {
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Label
}

// Forest is a majority-vote ensemble of decision trees.
type Forest struct {
	width int
	trees []*Node
}

// NewForest validates trees against width and returns the ensemble.
func NewForest(width int, trees []*Node) (*Forest, error) {
	if len(trees) == 0 {
		return nil, errors.New("forest has no trees")
	}
	for i, t := range trees {
		if err := t.validate(width); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return &Forest{width: width, trees: trees}, nil
}

// Predict returns the majority label per row. Ties go to the lowest label.
func (f *Forest) Predict(rows [][]float32) ([]int, error) {
	if err := checkShape(rows, f.width); err != nil {
		return nil, err
	}
	out := make([]int, len(rows))
	for i, row := range rows {
		votes := make(map[int]int, 2)
		for _, t := range f.trees {
			votes[t.predict(row)]++
		}
		best, bestVotes := 0, -1
		for label, n := range votes {
			if n > bestVotes || (n == bestVotes && label < best) {
				best, bestVotes = label, n
			}
		}
		out[i] = best
	}
	return out, nil
}

// Logistic is a binary logistic regression over standardized features.
type Logistic struct {
	weights   []float64
	means     []float64
	scales    []float64
	bias      float64
	threshold float64
}

// NewLogistic builds a logistic classifier. means and scales may be nil, in
// which case features are used unscaled.
func NewLogistic(weights, means, scales []float64, bias, threshold float64) (*Logistic, error) {
	if len(weights) == 0 {
		return nil, errors.New("logistic model has no weights")
	}
	if means == nil {
		means = make([]float64, len(weights))
	}
	if scales == nil {
		scales = make([]float64, len(weights))
		for i := range scales {
			scales[i] = 1
		}
	}
	if len(means) != len(weights) || len(scales) != len(weights) {
		return nil, fmt.Errorf("logistic model has %d weights, %d means and %d scales", len(weights), len(means), len(scales))
	}
	for i, s := range scales {
		if s == 0 {
			return nil, fmt.Errorf("scale of feature %d is zero", i)
		}
	}
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.5
	}
	return &Logistic{weights: weights, means: means, scales: scales, bias: bias, threshold: threshold}, nil
}

// Predict returns 1 for rows whose probability reaches the threshold, else 0.
func (l *Logistic) Predict(rows [][]float32) ([]int, error) {
	if err := checkShape(rows, len(l.weights)); err != nil {
		return nil, err
	}
	out := make([]int, len(rows))
	for i, row := range rows {
		z := l.bias
		for j, x := range row {
			z += l.weights[j] * (float64(x) - l.means[j]) / l.scales[j]
		}
		if 1/(1+math.Exp(-z)) >= l.threshold {
			out[i] = 1
		}
	}
	return out, nil
}
