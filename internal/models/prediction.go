package models

// Prediction is the scored outcome for one customer.
type Prediction struct {
	ChurnProbability float64 `json:"churn_probability"`
	PredictedLabel   int     `json:"predicted_label"`
	Decision         bool    `json:"decision"`
	Threshold        float64 `json:"threshold"`
	ProbIndexUsed    int     `json:"prob_index_used"`
	ModelClasses     []int   `json:"model_classes"`
}

// Explanation holds the reasons behind a prediction and the advice derived
// from them. The two lists are generated together but may differ in length.
type Explanation struct {
	Reasons []string `json:"reasons"`
	Advice  []string `json:"advice"`
}

// DebugInfo exposes classifier internals for diagnosability.
// All fields are omitted on error results.
type DebugInfo struct {
	ModelClasses  []int `json:"model_classes,omitempty"`
	RawPredict    *int  `json:"raw_predict,omitempty"`
	ProbIndexUsed *int  `json:"prob_index_used,omitempty"`
}

// ChurnResult is the structured response handed to presentation layers.
type ChurnResult struct {
	RequestID    string     `json:"request_id"`
	ResultText   string     `json:"result_text"`
	Prob         *string    `json:"prob"`
	ProbPercent  int        `json:"prob_percent"`
	Threshold    float64    `json:"threshold"`
	IsPositive   bool       `json:"is_positive"`
	Debug        *DebugInfo `json:"debug"`
	Reasons      []string   `json:"reasons,omitempty"`
	Advice       []string   `json:"advice,omitempty"`
	ModelVersion string     `json:"model_version,omitempty"`
	Error        bool       `json:"error"`
}

// Headline texts shown to the user.
const (
	ResultTextChurn    = "⚠️ This customer IS LIKELY to churn."
	ResultTextNotChurn = "✅ This customer is NOT likely to churn."
)
