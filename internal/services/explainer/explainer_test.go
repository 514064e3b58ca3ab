package explainer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churn-prediction-engine/internal/models"
	"churn-prediction-engine/internal/services/features"
)

// healthyCustomer triggers no warning in any rule.
func healthyCustomer() *models.CustomerInput {
	return &models.CustomerInput{
		CreditScore:     720,
		Age:             40,
		Tenure:          6,
		Balance:         90000,
		NumOfProducts:   2,
		EstimatedSalary: 100000,
		HasCrCard:       1,
		IsActiveMember:  1,
		Gender:          "Female",
	}
}

func explain(in *models.CustomerInput, churning bool) models.Explanation {
	return New().Explain(in, features.Derive(in, 0), churning)
}

func reasonFor(t *testing.T, rule string, warning bool) string {
	t.Helper()
	for _, r := range Rules() {
		if r.Name != rule {
			continue
		}
		for _, b := range r.Branches {
			if warning && b.Warning != nil {
				return b.Warning.Reason
			}
			if !warning && b.Warning == nil && b.Positive != nil {
				return b.Positive.Reason
			}
		}
	}
	t.Fatalf("no message for rule %s", rule)
	return ""
}

func TestExplain_AllWarningsInCanonicalOrder(t *testing.T) {
	in := &models.CustomerInput{
		CreditScore:     300,
		Age:             40,
		Tenure:          1,
		Balance:         10000,
		NumOfProducts:   1,
		EstimatedSalary: 50000,
		HasCrCard:       0,
		IsActiveMember:  0,
		Gender:          "Male",
	}

	out := explain(in, true)

	expected := []string{
		reasonFor(t, "credit_score", true),
		reasonFor(t, "tenure", true),
		reasonFor(t, "balance", true),
		reasonFor(t, "num_products", true),
		reasonFor(t, "activity", true),
		reasonFor(t, "credit_card", true),
	}
	assert.Equal(t, expected, out.Reasons)
	assert.Len(t, out.Advice, 6)
	for _, a := range out.Advice {
		assert.Contains(t, a, "⚠️")
	}
}

func TestExplain_WarningsStillEmittedWhenNotChurning(t *testing.T) {
	in := &models.CustomerInput{
		CreditScore:     300,
		Age:             40,
		Tenure:          1,
		Balance:         10000,
		NumOfProducts:   1,
		EstimatedSalary: 50000,
		HasCrCard:       0,
		IsActiveMember:  0,
		Gender:          "Male",
	}

	out := explain(in, false)

	require.Len(t, out.Reasons, 7)
	assert.Equal(t, reasonFor(t, "age", false), out.Reasons[6])
}

func TestExplain_PositiveFramingSuppressedWhenChurning(t *testing.T) {
	out := explain(healthyCustomer(), true)

	assert.Equal(t, []string{DefaultMessage.Reason}, out.Reasons)
	assert.Equal(t, []string{DefaultMessage.Advice}, out.Advice)
}

func TestExplain_HealthyCustomerNotChurning(t *testing.T) {
	out := explain(healthyCustomer(), false)

	expected := []string{
		reasonFor(t, "credit_score", false),
		reasonFor(t, "tenure", false),
		reasonFor(t, "balance", false),
		reasonFor(t, "num_products", false),
		reasonFor(t, "activity", false),
		reasonFor(t, "credit_card", false),
		reasonFor(t, "age", false),
	}
	assert.Equal(t, expected, out.Reasons)
	assert.Len(t, out.Advice, 7)
	for _, a := range out.Advice {
		assert.Contains(t, a, "✅")
	}
}

func TestExplain_YoungCustomerDualBranch(t *testing.T) {
	in := healthyCustomer()
	in.Age = 22

	out := explain(in, false)

	assert.Contains(t, out.Reasons, "Younger customers tend to explore better digital experiences and offers.")
	assert.Contains(t, out.Advice, "⚠️ Focus on mobile-first experiences, student offers, and gamified banking.")
	assert.Contains(t, out.Advice, "✅ Age is young; engage with mobile-first and gamified offerings.")
	// The positive note is advice only, so advice outgrows reasons by one.
	assert.Equal(t, len(out.Reasons)+1, len(out.Advice))

	churned := explain(in, true)
	assert.Equal(t, []string{"Younger customers tend to explore better digital experiences and offers."}, churned.Reasons)
	assert.NotContains(t, churned.Advice, "✅ Age is young; engage with mobile-first and gamified offerings.")
}

func TestExplain_SeniorCustomerDualBranch(t *testing.T) {
	in := healthyCustomer()
	in.Age = 65

	out := explain(in, false)

	assert.Contains(t, out.Reasons, "Senior customers often value stability and personalized service.")
	assert.Contains(t, out.Advice, "⚠️ Offer easy-access customer support and senior benefits plans.")
	assert.Contains(t, out.Advice, "✅ Senior age group; maintain personalized service and trust.")
}

func TestExplain_AgeBoundaries(t *testing.T) {
	for _, age := range []float64{25, 60} {
		in := healthyCustomer()
		in.Age = age
		out := explain(in, false)
		assert.Contains(t, out.Reasons, "Age group is stable and indicates low churn risk.", "age %v", age)
	}
}

func TestExplain_BalanceBranches(t *testing.T) {
	tests := []struct {
		name    string
		balance float64
		reason  string
	}{
		{"low", 24999.99, "Low account balance suggests limited financial engagement."},
		{"high", 200000.01, "Very high balance may indicate underutilized funds or customer exploring alternatives."},
		{"lower edge is middle", 25000, "Balance level is healthy and indicates moderate engagement."},
		{"upper edge is middle", 200000, "Balance level is healthy and indicates moderate engagement."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := healthyCustomer()
			in.Balance = tt.balance
			in.EstimatedSalary = 1000000
			out := explain(in, false)
			assert.Contains(t, out.Reasons, tt.reason)
		})
	}
}

func TestExplain_BalanceSalaryRatioWarningOnly(t *testing.T) {
	in := healthyCustomer()
	in.Balance = 150000
	in.EstimatedSalary = 50000

	churned := explain(in, true)
	assert.Equal(t, []string{"High balance-to-salary ratio may indicate unoptimized idle funds."}, churned.Reasons)
	assert.Equal(t, []string{"⚠️ Offer investment or savings plans to improve utilization."}, churned.Advice)

	in.EstimatedSalary = 75000 // ratio exactly 2 is not "high"
	out := explain(in, true)
	assert.Equal(t, []string{DefaultMessage.Reason}, out.Reasons)
}

func TestExplain_ThresholdEdges(t *testing.T) {
	in := healthyCustomer()
	in.CreditScore = 580
	in.Tenure = 2
	in.NumOfProducts = 2

	out := explain(in, true)
	assert.Equal(t, []string{DefaultMessage.Reason}, out.Reasons)

	in.CreditScore = 579.9
	in.Tenure = 1.99
	in.NumOfProducts = 0
	out = explain(in, true)
	assert.Len(t, out.Reasons, 3)
}

func TestExplain_NeverEmpty(t *testing.T) {
	rules := &Explainer{}
	out := rules.Explain(healthyCustomer(), models.DerivedFeatures{}, false)

	assert.NotEmpty(t, out.Reasons)
	assert.NotEmpty(t, out.Advice)
}

func TestRules_CanonicalOrder(t *testing.T) {
	var names []string
	for _, r := range Rules() {
		names = append(names, r.Name)
	}

	assert.Equal(t, []string{
		"credit_score", "tenure", "balance", "num_products",
		"activity", "credit_card", "age", "balance_salary_ratio",
	}, names)
}
