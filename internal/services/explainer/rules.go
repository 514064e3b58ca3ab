// Package explainer maps customer attributes to natural-language reasons and
// retention advice.
package explainer

import (
	"churn-prediction-engine/internal/models"
)

// Rule thresholds.
const (
	LowCreditScore         = 580
	ShortTenureYears       = 2
	LowBalance             = 25000
	HighBalance            = 200000
	SingleProduct          = 1
	YoungAge               = 25
	SeniorAge              = 60
	HighBalanceSalaryRatio = 2
)

// Message is one reason paired with its advice. An empty Reason means the
// message contributes advice only.
type Message struct {
	Reason string
	Advice string
}

// Facts is what a rule predicate can look at.
type Facts struct {
	Input   *models.CustomerInput
	Derived models.DerivedFeatures
}

// Branch is one arm of a rule. The first branch whose When matches is taken;
// a nil When always matches.
type Branch struct {
	When func(f Facts) bool

	// Warning is emitted whenever the branch is taken.
	Warning *Message

	// Positive is emitted only when the customer is predicted to stay.
	Positive *Message
}

// Rule is a named, ordered list of branches over one attribute.
type Rule struct {
	Name     string
	Branches []Branch
}

// DefaultMessage is used when no rule produced a reason.
var DefaultMessage = Message{
	Reason: "Customer profile appears balanced and stable with minimal churn risk factors.",
	Advice: "✅ Maintain strong engagement via continuous satisfaction monitoring and loyalty rewards.",
}

// Rules returns the canonical rule set in evaluation order:
// credit score, tenure, balance, products, activity, credit card, age,
// balance/salary ratio.
func Rules() []Rule {
	return []Rule{
		{
			Name: "credit_score",
			Branches: []Branch{
				{
					When: func(f Facts) bool { return f.Input.CreditScore < LowCreditScore },
					Warning: &Message{
						Reason: "Customer has a very low credit score, indicating high credit risk or previous payment issues.",
						Advice: "⚠️ Provide financial counseling or a secured credit card with low limits to rebuild trust.",
					},
				},
				{
					Positive: &Message{
						Reason: "Credit score is healthy and indicates responsible financial behavior.",
						Advice: "✅ Credit score is healthy. Encourage continued responsible financial behavior.",
					},
				},
			},
		},
		{
			Name: "tenure",
			Branches: []Branch{
				{
					When: func(f Facts) bool { return f.Input.Tenure < ShortTenureYears },
					Warning: &Message{
						Reason: "Customer has been with the bank for a short duration, indicating low brand loyalty.",
						Advice: "⚠️ Increase early engagement through personalized onboarding, rewards, and follow-ups.",
					},
				},
				{
					Positive: &Message{
						Reason: "Customer has some loyalty with the bank.",
						Advice: "✅ Customer has some loyalty; maintain engagement with small perks.",
					},
				},
			},
		},
		{
			Name: "balance",
			Branches: []Branch{
				{
					When: func(f Facts) bool { return f.Input.Balance < LowBalance },
					Warning: &Message{
						Reason: "Low account balance suggests limited financial engagement.",
						Advice: "⚠️ Introduce auto-savings plans or low-risk investment options.",
					},
				},
				{
					When: func(f Facts) bool { return f.Input.Balance > HighBalance },
					Warning: &Message{
						Reason: "Very high balance may indicate underutilized funds or customer exploring alternatives.",
						Advice: "⚠️ Offer personalized investment advice or wealth management services.",
					},
				},
				{
					Positive: &Message{
						Reason: "Balance level is healthy and indicates moderate engagement.",
						Advice: "✅ Balance level is healthy; maintain satisfaction with offers.",
					},
				},
			},
		},
		{
			Name: "num_products",
			Branches: []Branch{
				{
					When: func(f Facts) bool { return f.Input.NumOfProducts <= SingleProduct },
					Warning: &Message{
						Reason: "Customer holds only one banking product, increasing churn risk.",
						Advice: "⚠️ Cross-sell relevant products like insurance, Loans, or digital wallets, etc.",
					},
				},
				{
					Positive: &Message{
						Reason: "Customer has a moderate product portfolio.",
						Advice: "✅ Customer has a moderate product portfolio; consider cross-selling strategically.",
					},
				},
			},
		},
		{
			Name: "activity",
			Branches: []Branch{
				{
					When: func(f Facts) bool { return f.Input.IsActiveMember == 0 },
					Warning: &Message{
						Reason: "Customer has low or no account activity recently.",
						Advice: "⚠️ Re-engage through personalized offers, app notifications, or loyalty-based campaigns.",
					},
				},
				{
					Positive: &Message{
						Reason: "Active account holder; engagement is good.",
						Advice: "✅ Active account holder; continue providing seamless digital experiences.",
					},
				},
			},
		},
		{
			Name: "credit_card",
			Branches: []Branch{
				{
					When: func(f Facts) bool { return f.Input.HasCrCard == 0 },
					Warning: &Message{
						Reason: "Customer does not own a credit card — potentially less tied to the bank.",
						Advice: "⚠️ Promote an entry-level credit card with cashback or reward programs.",
					},
				},
				{
					Positive: &Message{
						Reason: "Customer holds a credit card, indicating stronger bank relationship.",
						Advice: "✅ Credit card holder; offer bonus rewards or cashback upgrades.",
					},
				},
			},
		},
		{
			// Age is the only rule whose at-risk arms also carry a positive note.
			Name: "age",
			Branches: []Branch{
				{
					When: func(f Facts) bool { return f.Input.Age < YoungAge },
					Warning: &Message{
						Reason: "Younger customers tend to explore better digital experiences and offers.",
						Advice: "⚠️ Focus on mobile-first experiences, student offers, and gamified banking.",
					},
					Positive: &Message{
						Advice: "✅ Age is young; engage with mobile-first and gamified offerings.",
					},
				},
				{
					When: func(f Facts) bool { return f.Input.Age > SeniorAge },
					Warning: &Message{
						Reason: "Senior customers often value stability and personalized service.",
						Advice: "⚠️ Offer easy-access customer support and senior benefits plans.",
					},
					Positive: &Message{
						Advice: "✅ Senior age group; maintain personalized service and trust.",
					},
				},
				{
					Positive: &Message{
						Reason: "Age group is stable and indicates low churn risk.",
						Advice: "✅ Age group is stable; maintain engagement with personalized offers.",
					},
				},
			},
		},
		{
			Name: "balance_salary_ratio",
			Branches: []Branch{
				{
					When: func(f Facts) bool { return f.Derived.BalanceSalaryRatio > HighBalanceSalaryRatio },
					Warning: &Message{
						Reason: "High balance-to-salary ratio may indicate unoptimized idle funds.",
						Advice: "⚠️ Offer investment or savings plans to improve utilization.",
					},
				},
			},
		},
	}
}
