// Package classifier loads the pre-trained churn model and exposes it behind
// a small capability interface.
package classifier

import (
	"fmt"

	"churn-prediction-engine/internal/models"
	"churn-prediction-engine/internal/services/encoder"
)

// ChurnLabel is the class label the model uses for churned customers.
const ChurnLabel = 1

// Supported model types.
const (
	ModelTypeLogisticRegression = "logistic_regression"
	ModelTypeRandomForest       = "random_forest"
)

// Classifier is the contract the prediction pipeline needs from a model.
// Implementations must be safe for concurrent reads.
type Classifier interface {
	// PredictProba returns one probability per entry of Classes.
	PredictProba(x []float64) ([]float64, error)

	// Predict returns the most likely class label.
	Predict(x []float64) (int, error)

	// Classes returns the class labels in probability-column order.
	Classes() []int
}

// Bundle is a loaded artifact: the classifier plus the encoders it was
// trained with.
type Bundle struct {
	Name       string
	Version    string
	ModelType  string
	Classifier Classifier
	Gender     *encoder.LabelEncoder
}

// ChurnIndex returns the probability column of ChurnLabel, or -1 if the
// model does not know that class.
func ChurnIndex(classes []int) int {
	for i, c := range classes {
		if c == ChurnLabel {
			return i
		}
	}
	return -1
}

// ChurnProbability scores x and picks the churn column. When the model has no
// churn class the probability is 0 and the index is -1.
func ChurnProbability(c Classifier, x []float64) (float64, int, error) {
	probas, err := c.PredictProba(x)
	if err != nil {
		return 0, -1, err
	}

	idx := ChurnIndex(c.Classes())
	if idx < 0 {
		return 0, -1, nil
	}
	if idx >= len(probas) {
		return 0, -1, fmt.Errorf("%w: %d probabilities for %d classes", models.ErrFeatureMismatch, len(probas), len(c.Classes()))
	}

	return probas[idx], idx, nil
}

func checkWidth(x []float64, want int) error {
	if len(x) != want {
		return fmt.Errorf("%w: got %d features, want %d", models.ErrFeatureMismatch, len(x), want)
	}
	return nil
}

// argmax returns the index of the largest value, first on ties.
func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
