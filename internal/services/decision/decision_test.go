package decision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churn-prediction-engine/internal/models"
)

func TestDecide_Boundary(t *testing.T) {
	tests := []struct {
		name        string
		probability float64
		expected    bool
	}{
		{"well below", 0.05, false},
		{"just below", math.Nextafter(DefaultThreshold, 0), false},
		{"exactly at threshold", DefaultThreshold, true},
		{"just above", math.Nextafter(DefaultThreshold, 1), true},
		{"certain churn", 1, true},
		{"zero", 0, false},
	}

	engine := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, engine.Decide(tt.probability))
			assert.Equal(t, tt.expected, Decide(tt.probability, DefaultThreshold))
		})
	}
}

func TestNew_ValidatesThreshold(t *testing.T) {
	for _, bad := range []float64{-0.1, 1.01, math.NaN()} {
		_, err := New(bad)
		assert.ErrorIs(t, err, models.ErrInvalidThreshold)
	}

	engine, err := New(0.55)
	require.NoError(t, err)
	assert.Equal(t, 0.55, engine.Threshold())
	assert.False(t, engine.Decide(0.5))
	assert.True(t, engine.Decide(0.55))
}

func TestDefault(t *testing.T) {
	assert.Equal(t, 0.4, Default().Threshold())
}
