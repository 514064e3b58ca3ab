package classifier

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churn-prediction-engine/internal/models"
)

func vector(active, age float64) []float64 {
	return []float64{650, age, 5, 50000, 2, 80000, 0.625, 0.1, 16, 1, active, 1}
}

func TestLoadFile_LogisticRegression(t *testing.T) {
	bundle, err := LoadFile("testdata/logistic.json")
	require.NoError(t, err)

	assert.Equal(t, "churn-test", bundle.Name)
	assert.Equal(t, "2024.1.0", bundle.Version)
	assert.Equal(t, ModelTypeLogisticRegression, bundle.ModelType)
	assert.Equal(t, []int{0, 1}, bundle.Classifier.Classes())
	assert.Equal(t, []string{"Female", "Male"}, bundle.Gender.Classes())

	probas, err := bundle.Classifier.PredictProba(vector(0, 40))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, probas, 1e-12)

	probas, err = bundle.Classifier.PredictProba(vector(1, 40))
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.E), probas[1], 1e-12)

	label, err := bundle.Classifier.Predict(vector(1, 40))
	require.NoError(t, err)
	assert.Equal(t, 0, label)
}

func TestLoadFile_RandomForestYAML(t *testing.T) {
	bundle, err := LoadFile("testdata/forest.yaml")
	require.NoError(t, err)
	assert.Equal(t, ModelTypeRandomForest, bundle.ModelType)

	probas, err := bundle.Classifier.PredictProba(vector(0, 50))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, probas, 1e-12)

	label, err := bundle.Classifier.Predict(vector(0, 50))
	require.NoError(t, err)
	assert.Equal(t, 1, label)

	probas, err = bundle.Classifier.PredictProba(vector(1, 30))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.75, 0.25}, probas, 1e-12)

	// x <= threshold goes left
	probas, err = bundle.Classifier.PredictProba(vector(1, 45))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.75, 0.25}, probas, 1e-12)
}

func TestLoadFile_BundledArtifact(t *testing.T) {
	bundle, err := LoadFile("../../../artifacts/churn_model.json")
	require.NoError(t, err)

	p, idx, err := ChurnProbability(bundle.Classifier, vector(0, 60))
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.True(t, p > 0 && p < 1)
}

func TestLoadFile_Failures(t *testing.T) {
	_, err := LoadFile("testdata/missing.json")
	require.Error(t, err)

	var unavailable *models.ClassifierUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "file:testdata/missing.json", unavailable.Source)
}

func TestChurnProbability_NoChurnClass(t *testing.T) {
	bundle, err := LoadFile("testdata/no_churn_class.json")
	require.NoError(t, err)

	p, idx, err := ChurnProbability(bundle.Classifier, vector(1, 40))
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)
	assert.Equal(t, -1, idx)
}

func TestChurnIndex(t *testing.T) {
	assert.Equal(t, 1, ChurnIndex([]int{0, 1}))
	assert.Equal(t, 0, ChurnIndex([]int{1, 0}))
	assert.Equal(t, -1, ChurnIndex([]int{0, 2}))
	assert.Equal(t, -1, ChurnIndex(nil))
}

func TestPredictProba_WrongWidth(t *testing.T) {
	bundle, err := LoadFile("testdata/logistic.json")
	require.NoError(t, err)

	_, err = bundle.Classifier.PredictProba([]float64{1, 2, 3})
	assert.ErrorIs(t, err, models.ErrFeatureMismatch)
}

func TestNewLogisticRegression_Scaler(t *testing.T) {
	m, err := NewLogisticRegression([]int{0, 1}, LogisticParams{
		Coef:      []float64{2, 0},
		Intercept: 0,
		Mean:      []float64{10, 5},
		Scale:     []float64{5, 0},
	})
	require.NoError(t, err)

	probas, err := m.PredictProba([]float64{15, 123})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-2)), probas[1], 1e-12)

	_, err = NewLogisticRegression([]int{0, 1}, LogisticParams{Coef: []float64{1, 2}, Mean: []float64{1}})
	assert.ErrorIs(t, err, models.ErrInvalidArtifact)

	_, err = NewLogisticRegression([]int{0, 1, 2}, LogisticParams{Coef: []float64{1}})
	assert.ErrorIs(t, err, models.ErrInvalidArtifact)
}

func TestNewRandomForest_Validation(t *testing.T) {
	valid := TreeParams{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{0, -2, -2},
		Threshold:     []float64{0.5, -2, -2},
		Value:         [][]float64{{1, 1}, {1, 0}, {0, 1}},
	}

	tests := []struct {
		name   string
		mutate func(t *TreeParams)
	}{
		{"child points backwards", func(t *TreeParams) { t.ChildrenLeft = []int{0, -1, -1} }},
		{"child out of range", func(t *TreeParams) { t.ChildrenRight = []int{7, -1, -1} }},
		{"feature out of range", func(t *TreeParams) { t.Feature = []int{12, -2, -2} }},
		{"value width", func(t *TreeParams) { t.Value = [][]float64{{1, 1}, {1}, {0, 1}} }},
		{"empty leaf", func(t *TreeParams) { t.Value = [][]float64{{1, 1}, {0, 0}, {0, 1}} }},
		{"ragged arrays", func(t *TreeParams) { t.Threshold = []float64{0.5} }},
	}

	_, err := NewRandomForest([]int{0, 1}, ForestParams{NFeatures: 2, Trees: []TreeParams{valid}})
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := valid
			tt.mutate(&tree)
			_, err := NewRandomForest([]int{0, 1}, ForestParams{NFeatures: 2, Trees: []TreeParams{tree}})
			assert.ErrorIs(t, err, models.ErrInvalidArtifact)
		})
	}
}

func TestArtifactBuild_Errors(t *testing.T) {
	base := func() *Artifact {
		a, err := Decode([]byte(`{
			"name": "x", "version": "1", "model_type": "logistic_regression", "classes": [0, 1],
			"feature_names": ["CreditScore","Age","Tenure","Balance","NumOfProducts","EstimatedSalary",
				"BalanceSalaryRatio","TenureByAge","CreditScoreGivenAge","HasCrCard","IsActiveMember","Gender"],
			"encoders": {"Gender": {"classes": ["Female","Male"]}},
			"logistic": {"coef": [0,0,0,0,0,0,0,0,0,0,0,0], "intercept": 0}
		}`), models.ArtifactFormatJSON)
		require.NoError(t, err)
		return a
	}

	_, err := base().Build()
	require.NoError(t, err)

	a := base()
	a.FeatureNames[0], a.FeatureNames[1] = a.FeatureNames[1], a.FeatureNames[0]
	_, err = a.Build()
	assert.ErrorIs(t, err, models.ErrFeatureMismatch)

	a = base()
	a.ModelType = "xgboost"
	_, err = a.Build()
	assert.ErrorIs(t, err, models.ErrUnsupportedModel)

	a = base()
	delete(a.Encoders, GenderEncoderKey)
	_, err = a.Build()
	assert.ErrorIs(t, err, models.ErrInvalidArtifact)

	a = base()
	a.Logistic.Coef = a.Logistic.Coef[:11]
	_, err = a.Build()
	assert.ErrorIs(t, err, models.ErrFeatureMismatch)

	_, err = Decode([]byte("  "), models.ArtifactFormatJSON)
	assert.ErrorIs(t, err, models.ErrInvalidArtifact)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, models.ArtifactFormatYAML, FormatFromPath("models/churn.YAML"))
	assert.Equal(t, models.ArtifactFormatYAML, FormatFromPath("churn.yml"))
	assert.Equal(t, models.ArtifactFormatJSON, FormatFromPath("churn.json"))
	assert.Equal(t, models.ArtifactFormatJSON, FormatFromPath("churn"))
}

type fakeStore map[string][]byte

func (s fakeStore) DownloadFile(_ context.Context, key string) ([]byte, error) {
	data, ok := s[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return data, nil
}

type fakeRegistry struct {
	artifact *models.ModelArtifact
	err      error
}

func (r fakeRegistry) GetArtifact(_ context.Context, _, _ string) (*models.ModelArtifact, error) {
	return r.artifact, r.err
}

func TestLoadObject(t *testing.T) {
	payload := []byte(`{"name":"s3-model","version":"7","model_type":"logistic_regression","classes":[0,1],
		"feature_names":["CreditScore","Age","Tenure","Balance","NumOfProducts","EstimatedSalary",
			"BalanceSalaryRatio","TenureByAge","CreditScoreGivenAge","HasCrCard","IsActiveMember","Gender"],
		"encoders":{"Gender":{"classes":["Female","Male"]}},
		"logistic":{"coef":[0,0,0,0,0,0,0,0,0,0,0,0],"intercept":0}}`)
	store := fakeStore{"models/churn.json": payload}

	bundle, err := LoadObject(context.Background(), store, "models/churn.json")
	require.NoError(t, err)
	assert.Equal(t, "s3-model", bundle.Name)

	_, err = LoadObject(context.Background(), store, "models/other.json")
	var unavailable *models.ClassifierUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "s3:models/other.json", unavailable.Source)
}

func TestLoadRegistry(t *testing.T) {
	payload := []byte(`{"name":"bank-churn","version":"3","model_type":"logistic_regression","classes":[0,1],
		"feature_names":["CreditScore","Age","Tenure","Balance","NumOfProducts","EstimatedSalary",
			"BalanceSalaryRatio","TenureByAge","CreditScoreGivenAge","HasCrCard","IsActiveMember","Gender"],
		"encoders":{"Gender":{"classes":["Female","Male"]}},
		"logistic":{"coef":[0,0,0,0,0,0,0,0,0,0,0,0],"intercept":0}}`)

	reg := fakeRegistry{artifact: &models.ModelArtifact{
		Name: "bank-churn", Version: "3", Format: models.ArtifactFormatJSON, Payload: payload,
	}}
	bundle, err := LoadRegistry(context.Background(), reg, "bank-churn", "")
	require.NoError(t, err)
	assert.Equal(t, "3", bundle.Version)

	mismatched := fakeRegistry{artifact: &models.ModelArtifact{
		Name: "bank-churn", Version: "4", Format: models.ArtifactFormatJSON, Payload: payload,
	}}
	_, err = LoadRegistry(context.Background(), mismatched, "bank-churn", "4")
	assert.ErrorIs(t, err, models.ErrInvalidArtifact)

	_, err = LoadRegistry(context.Background(), fakeRegistry{}, "bank-churn", "9")
	assert.ErrorIs(t, err, models.ErrArtifactNotFound)
}
