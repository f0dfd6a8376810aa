// Package forest decodes and evaluates regression tree ensembles, covering
// both averaged forests and boosted (summed) trees.
package forest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ekisa-team/estimo/internal/backend"
)

const (
	AggregationMean = "mean"
	AggregationSum  = "sum"
)

type node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

type tree struct {
	Nodes []node `json:"nodes"`
}

type document struct {
	Format       backend.Format `json:"format"`
	NFeatures    int            `json:"n_features"`
	Aggregation  string         `json:"aggregation"`
	BaseScore    float64        `json:"base_score"`
	LearningRate *float64       `json:"learning_rate"`
	Trees        []tree         `json:"trees"`
}

// Model is a decoded tree ensemble.
type Model struct {
	trees        []tree
	nFeatures    int
	aggregation  string
	baseScore    float64
	learningRate float64
}

// Decoder implements backend.Decoder for forest artifacts.
type Decoder struct{}

// NewDecoder creates a new forest Decoder.
func NewDecoder() Decoder {
	return Decoder{}
}

// Format returns the decoder format.
func (Decoder) Format() backend.Format {
	return backend.FormatForest
}

// Decode validates and decodes a forest artifact. Children must come after
// their parent in the node list, which keeps every walk finite.
func (Decoder) Decode(data []byte) (backend.Predictor, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.NFeatures <= 0 {
		return nil, errors.New("n_features must be positive")
	}
	if len(doc.Trees) == 0 {
		return nil, errors.New("no trees")
	}

	m := &Model{
		trees:        doc.Trees,
		nFeatures:    doc.NFeatures,
		aggregation:  doc.Aggregation,
		baseScore:    doc.BaseScore,
		learningRate: 1,
	}
	if m.aggregation == "" {
		m.aggregation = AggregationMean
	}
	if m.aggregation != AggregationMean && m.aggregation != AggregationSum {
		return nil, fmt.Errorf("unsupported aggregation %q", m.aggregation)
	}
	if doc.LearningRate != nil {
		m.learningRate = *doc.LearningRate
	}
	if math.IsNaN(m.baseScore) || math.IsInf(m.baseScore, 0) {
		return nil, errors.New("base_score is not finite")
	}
	if math.IsNaN(m.learningRate) || math.IsInf(m.learningRate, 0) {
		return nil, errors.New("learning_rate is not finite")
	}

	for ti, t := range doc.Trees {
		if err := validateTree(t, doc.NFeatures); err != nil {
			return nil, fmt.Errorf("tree %d: %w", ti, err)
		}
	}

	return m, nil
}

func validateTree(t tree, nFeatures int) error {
	if len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}

	for i, n := range t.Nodes {
		if n.Leaf {
			if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
				return fmt.Errorf("node %d: leaf value is not finite", i)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
	}

	return nil
}

// Format returns the model format.
func (m *Model) Format() backend.Format {
	return backend.FormatForest
}

// Dimension returns the number of features the ensemble was trained on.
func (m *Model) Dimension() int {
	return m.nFeatures
}

// Predict evaluates the ensemble on one row.
func (m *Model) Predict(_ context.Context, features backend.FeatureVector) (float64, error) {
	if len(features) != m.nFeatures {
		return 0, fmt.Errorf("%w: got %d, want %d", backend.ErrDimension, len(features), m.nFeatures)
	}

	var total float64
	for _, t := range m.trees {
		total += walk(t, features)
	}

	if m.aggregation == AggregationSum {
		return m.baseScore + m.learningRate*total, nil
	}

	return m.baseScore + total/float64(len(m.trees)), nil
}

func walk(t tree, features backend.FeatureVector) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if features[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
