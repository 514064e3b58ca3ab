package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"churn-prediction-engine/internal/models"
	"churn-prediction-engine/internal/services/encoder"
)

// GenderEncoderKey is the encoder entry holding the gender classes.
const GenderEncoderKey = "Gender"

// EncoderSpec is a label encoder exported with the model.
type EncoderSpec struct {
	Classes []string `json:"classes" yaml:"classes"`
}

// Artifact is the serialized form of a trained churn model.
type Artifact struct {
	Name         string                 `json:"name" yaml:"name"`
	Version      string                 `json:"version" yaml:"version"`
	ModelType    string                 `json:"model_type" yaml:"model_type"`
	Classes      []int                  `json:"classes" yaml:"classes"`
	FeatureNames []string               `json:"feature_names" yaml:"feature_names"`
	Encoders     map[string]EncoderSpec `json:"encoders" yaml:"encoders"`
	Logistic     *LogisticParams        `json:"logistic,omitempty" yaml:"logistic,omitempty"`
	Forest       *ForestParams          `json:"forest,omitempty" yaml:"forest,omitempty"`
}

// FormatFromPath picks the artifact format from a file name or object key.
func FormatFromPath(path string) models.ArtifactFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return models.ArtifactFormatYAML
	default:
		return models.ArtifactFormatJSON
	}
}

// Decode parses an artifact payload.
func Decode(data []byte, format models.ArtifactFormat) (*Artifact, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty payload", models.ErrInvalidArtifact)
	}

	var a Artifact
	switch format {
	case models.ArtifactFormatYAML:
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidArtifact, err)
		}
	case models.ArtifactFormatJSON:
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidArtifact, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", models.ErrInvalidArtifact, format)
	}

	return &a, nil
}

// Validate checks the parts of the artifact shared by all model types.
func (a *Artifact) Validate() error {
	if a.Name == "" || a.Version == "" {
		return fmt.Errorf("%w: name and version are required", models.ErrInvalidArtifact)
	}
	if len(a.Classes) == 0 {
		return fmt.Errorf("%w: no classes", models.ErrInvalidArtifact)
	}

	want := models.FeatureNames()
	if len(a.FeatureNames) != len(want) {
		return fmt.Errorf("%w: artifact has %d features, want %d", models.ErrFeatureMismatch, len(a.FeatureNames), len(want))
	}
	for i := range want {
		if a.FeatureNames[i] != want[i] {
			return fmt.Errorf("%w: feature %d is %q, want %q", models.ErrFeatureMismatch, i, a.FeatureNames[i], want[i])
		}
	}

	if _, ok := a.Encoders[GenderEncoderKey]; !ok {
		return fmt.Errorf("%w: missing %s encoder", models.ErrInvalidArtifact, GenderEncoderKey)
	}

	return nil
}

// Build validates the artifact and constructs the classifier and encoders.
func (a *Artifact) Build() (*Bundle, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	gender, err := encoder.New(GenderEncoderKey, a.Encoders[GenderEncoderKey].Classes)
	if err != nil {
		return nil, err
	}

	var clf Classifier
	switch a.ModelType {
	case ModelTypeLogisticRegression:
		if a.Logistic == nil {
			return nil, fmt.Errorf("%w: missing logistic parameters", models.ErrInvalidArtifact)
		}
		lr, err := NewLogisticRegression(a.Classes, *a.Logistic)
		if err != nil {
			return nil, err
		}
		if len(a.Logistic.Coef) != models.FeatureCount {
			return nil, fmt.Errorf("%w: %d coefficients, want %d", models.ErrFeatureMismatch, len(a.Logistic.Coef), models.FeatureCount)
		}
		clf = lr
	case ModelTypeRandomForest:
		if a.Forest == nil {
			return nil, fmt.Errorf("%w: missing forest parameters", models.ErrInvalidArtifact)
		}
		if a.Forest.NFeatures != models.FeatureCount {
			return nil, fmt.Errorf("%w: forest expects %d features, want %d", models.ErrFeatureMismatch, a.Forest.NFeatures, models.FeatureCount)
		}
		rf, err := NewRandomForest(a.Classes, *a.Forest)
		if err != nil {
			return nil, err
		}
		clf = rf
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedModel, a.ModelType)
	}

	return &Bundle{
		Name:       a.Name,
		Version:    a.Version,
		ModelType:  a.ModelType,
		Classifier: clf,
		Gender:     gender,
	}, nil
}
