// Package decision turns a churn probability into a binary business decision.
package decision

import (
	"fmt"
	"math"

	"churn-prediction-engine/internal/models"
)

// DefaultThreshold is the business cutoff at or above which a customer is
// flagged as likely to churn.
const DefaultThreshold = 0.4

// Engine applies a fixed threshold. The zero value is not usable; call New.
type Engine struct {
	threshold float64
}

// New creates a decision engine with the given threshold.
func New(threshold float64) (*Engine, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", models.ErrInvalidThreshold, threshold)
	}
	return &Engine{threshold: threshold}, nil
}

// Default returns an engine using DefaultThreshold.
func Default() *Engine {
	return &Engine{threshold: DefaultThreshold}
}

// Decide reports whether probability reaches the engine's threshold.
func (e *Engine) Decide(probability float64) bool {
	return Decide(probability, e.threshold)
}

// Threshold returns the configured cutoff.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Decide is the boundary-inclusive comparison used by Engine.
func Decide(probability, threshold float64) bool {
	return probability >= threshold
}
