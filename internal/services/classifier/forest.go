package classifier

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"churn-prediction-engine/internal/models"
)

// leafNode marks a node without children in the exported tree arrays.
const leafNode = -1

// TreeParams is one decision tree in flattened array form. Node i splits on
// Feature[i] at Threshold[i]; samples with x <= threshold go left. Value[i]
// holds per-class sample weights at the node.
type TreeParams struct {
	ChildrenLeft  []int       `json:"children_left" yaml:"children_left"`
	ChildrenRight []int       `json:"children_right" yaml:"children_right"`
	Feature       []int       `json:"feature" yaml:"feature"`
	Threshold     []float64   `json:"threshold" yaml:"threshold"`
	Value         [][]float64 `json:"value" yaml:"value"`
}

// ForestParams holds the trees of a random forest.
type ForestParams struct {
	NFeatures int          `json:"n_features" yaml:"n_features"`
	Trees     []TreeParams `json:"trees" yaml:"trees"`
}

// RandomForest averages the normalized leaf distributions of its trees.
type RandomForest struct {
	classes   []int
	nFeatures int
	trees     []TreeParams
}

// NewRandomForest validates the tree arrays and builds the model.
func NewRandomForest(classes []int, p ForestParams) (*RandomForest, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: random forest has no classes", models.ErrInvalidArtifact)
	}
	if len(p.Trees) == 0 {
		return nil, fmt.Errorf("%w: random forest has no trees", models.ErrInvalidArtifact)
	}
	if p.NFeatures <= 0 {
		return nil, fmt.Errorf("%w: random forest n_features must be positive", models.ErrInvalidArtifact)
	}

	for i, t := range p.Trees {
		if err := validateTree(t, len(classes), p.NFeatures); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", models.ErrInvalidArtifact, i, err)
		}
	}

	return &RandomForest{
		classes:   append([]int(nil), classes...),
		nFeatures: p.NFeatures,
		trees:     p.Trees,
	}, nil
}

func validateTree(t TreeParams, nClasses, nFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays have different lengths")
	}

	for i := 0; i < n; i++ {
		if len(t.Value[i]) != nClasses {
			return fmt.Errorf("node %d has %d values for %d classes", i, len(t.Value[i]), nClasses)
		}
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == leafNode {
			if floats.Sum(t.Value[i]) <= 0 {
				return fmt.Errorf("leaf %d has no weight", i)
			}
			continue
		}
		// Children always come after their parent, which also rules out cycles.
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d has invalid children", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d", i, t.Feature[i])
		}
	}

	return nil
}

// Classes implements Classifier.
func (m *RandomForest) Classes() []int {
	return append([]int(nil), m.classes...)
}

// PredictProba implements Classifier.
func (m *RandomForest) PredictProba(x []float64) ([]float64, error) {
	if err := checkWidth(x, m.nFeatures); err != nil {
		return nil, err
	}

	probas := make([]float64, len(m.classes))
	leaf := make([]float64, len(m.classes))
	for _, t := range m.trees {
		copy(leaf, t.Value[t.apply(x)])
		floats.Scale(1/floats.Sum(leaf), leaf)
		floats.Add(probas, leaf)
	}
	floats.Scale(1/float64(len(m.trees)), probas)

	return probas, nil
}

// Predict implements Classifier.
func (m *RandomForest) Predict(x []float64) (int, error) {
	probas, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return m.classes[argmax(probas)], nil
}

// apply returns the leaf index reached by x.
func (t TreeParams) apply(x []float64) int {
	node := 0
	for t.ChildrenLeft[node] != leafNode {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return node
}
