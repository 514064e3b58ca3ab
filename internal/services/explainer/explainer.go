package explainer

import (
	"churn-prediction-engine/internal/models"
)

// Explainer evaluates a fixed rule table. It holds no mutable state and is
// safe for concurrent use.
type Explainer struct {
	rules []Rule
}

// New creates an explainer over the canonical rule set.
func New() *Explainer {
	return &Explainer{rules: Rules()}
}

// Explain produces the reasons and advice for one customer. churning is the
// decision engine's outcome; positive framing is suppressed when it is true.
// The returned lists are never empty.
func (e *Explainer) Explain(in *models.CustomerInput, derived models.DerivedFeatures, churning bool) models.Explanation {
	facts := Facts{Input: in, Derived: derived}
	out := models.Explanation{
		Reasons: []string{},
		Advice:  []string{},
	}

	for _, rule := range e.rules {
		branch, ok := selectBranch(rule, facts)
		if !ok {
			continue
		}
		if branch.Warning != nil {
			appendMessage(&out, *branch.Warning)
		}
		if branch.Positive != nil && !churning {
			appendMessage(&out, *branch.Positive)
		}
	}

	if len(out.Reasons) == 0 {
		appendMessage(&out, DefaultMessage)
	}

	return out
}

func selectBranch(rule Rule, f Facts) (Branch, bool) {
	for _, b := range rule.Branches {
		if b.When == nil || b.When(f) {
			return b, true
		}
	}
	return Branch{}, false
}

func appendMessage(out *models.Explanation, m Message) {
	if m.Reason != "" {
		out.Reasons = append(out.Reasons, m.Reason)
	}
	if m.Advice != "" {
		out.Advice = append(out.Advice, m.Advice)
	}
}
