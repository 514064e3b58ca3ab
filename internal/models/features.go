package models

// Epsilon smooths every derived ratio so a zero denominator stays finite.
// It is part of the classifier's training contract. A denominator of exactly
// -Epsilon still divides by zero; CheckFinite catches that.
const Epsilon = 1e-6

// FeatureCount is the length of the classifier input.
const FeatureCount = 12

// DerivedFeatures holds the secondary ratios computed from a CustomerInput.
type DerivedFeatures struct {
	BalanceSalaryRatio  float64 `json:"balance_salary_ratio"`
	TenureByAge         float64 `json:"tenure_by_age"`
	CreditScoreGivenAge float64 `json:"credit_score_given_age"`
	GenderCode          int     `json:"gender_code"`
}

// FeatureVector is the fixed-order classifier input.
// Index order must match FeatureNames.
type FeatureVector [FeatureCount]float64

// FeatureNames returns the training column names in vector order.
func FeatureNames() []string {
	return []string{
		"CreditScore",
		"Age",
		"Tenure",
		"Balance",
		"NumOfProducts",
		"EstimatedSalary",
		"BalanceSalaryRatio",
		"TenureByAge",
		"CreditScoreGivenAge",
		"HasCrCard",
		"IsActiveMember",
		"Gender",
	}
}

// Slice returns a copy of the vector as a slice.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}
