package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"churn-prediction-engine/internal/models"
)

// LogisticParams are the exported weights of a binary logistic regression,
// optionally preceded by a standard scaler.
type LogisticParams struct {
	Coef      []float64 `json:"coef" yaml:"coef"`
	Intercept float64   `json:"intercept" yaml:"intercept"`
	Mean      []float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Scale     []float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// LogisticRegression is a binary logistic model. The positive class is
// classes[1].
type LogisticRegression struct {
	classes   []int
	coef      []float64
	intercept float64
	mean      []float64
	scale     []float64
}

// NewLogisticRegression validates params and builds the model.
func NewLogisticRegression(classes []int, p LogisticParams) (*LogisticRegression, error) {
	if len(classes) != 2 {
		return nil, fmt.Errorf("%w: logistic regression needs 2 classes, got %d", models.ErrInvalidArtifact, len(classes))
	}
	if len(p.Coef) == 0 {
		return nil, fmt.Errorf("%w: logistic regression has no coefficients", models.ErrInvalidArtifact)
	}

	n := len(p.Coef)
	m := &LogisticRegression{
		classes:   append([]int(nil), classes...),
		coef:      append([]float64(nil), p.Coef...),
		intercept: p.Intercept,
	}

	if len(p.Mean) > 0 || len(p.Scale) > 0 {
		if len(p.Mean) != n || len(p.Scale) != n {
			return nil, fmt.Errorf("%w: scaler width does not match %d coefficients", models.ErrInvalidArtifact, n)
		}
		m.mean = append([]float64(nil), p.Mean...)
		m.scale = make([]float64, n)
		for i, s := range p.Scale {
			// Constant training columns are exported with scale 0.
			if s == 0 {
				s = 1
			}
			m.scale[i] = s
		}
	}

	return m, nil
}

// Classes implements Classifier.
func (m *LogisticRegression) Classes() []int {
	return append([]int(nil), m.classes...)
}

// PredictProba implements Classifier.
func (m *LogisticRegression) PredictProba(x []float64) ([]float64, error) {
	if err := checkWidth(x, len(m.coef)); err != nil {
		return nil, err
	}

	z := append([]float64(nil), x...)
	if m.mean != nil {
		floats.Sub(z, m.mean)
		floats.Div(z, m.scale)
	}

	p := sigmoid(floats.Dot(m.coef, z) + m.intercept)
	return []float64{1 - p, p}, nil
}

// Predict implements Classifier.
func (m *LogisticRegression) Predict(x []float64) (int, error) {
	probas, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return m.classes[argmax(probas)], nil
}

func sigmoid(t float64) float64 {
	if t >= 0 {
		return 1 / (1 + math.Exp(-t))
	}
	e := math.Exp(t)
	return e / (1 + e)
}
