// Package features derives the engineered ratios and builds the classifier
// input vector.
package features

import (
	"fmt"
	"math"

	"churn-prediction-engine/internal/models"
)

// Derive computes the secondary ratios for in. genderCode is the label
// encoder's code for in.Gender. The formulas and the smoothing constant are
// fixed by the trained model and must not change.
func Derive(in *models.CustomerInput, genderCode int) models.DerivedFeatures {
	return models.DerivedFeatures{
		BalanceSalaryRatio:  in.Balance / (in.EstimatedSalary + models.Epsilon),
		TenureByAge:         in.Tenure / (in.Age + models.Epsilon),
		CreditScoreGivenAge: in.CreditScore / (in.Age + models.Epsilon),
		GenderCode:          genderCode,
	}
}

// BuildVector lays out the raw and derived features in training order.
func BuildVector(in *models.CustomerInput, d models.DerivedFeatures) models.FeatureVector {
	return models.FeatureVector{
		in.CreditScore,
		in.Age,
		in.Tenure,
		in.Balance,
		float64(in.NumOfProducts),
		in.EstimatedSalary,
		d.BalanceSalaryRatio,
		d.TenureByAge,
		d.CreditScoreGivenAge,
		float64(in.HasCrCard),
		float64(in.IsActiveMember),
		float64(d.GenderCode),
	}
}

// CheckFinite rejects a vector holding NaN or Inf, which a denominator of
// exactly -Epsilon produces.
func CheckFinite(v models.FeatureVector) error {
	names := models.FeatureNames()
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s = %v (division by zero)", models.ErrNonFiniteFeature, names[i], x)
		}
	}
	return nil
}
