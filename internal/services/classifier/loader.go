package classifier

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"churn-prediction-engine/internal/models"
	"churn-prediction-engine/internal/utils"
)

// ObjectStore fetches artifact payloads by key (S3 in production).
type ObjectStore interface {
	DownloadFile(ctx context.Context, key string) ([]byte, error)
}

// Registry looks up versioned artifacts. An empty version means latest.
type Registry interface {
	GetArtifact(ctx context.Context, name, version string) (*models.ModelArtifact, error)
}

// LoadBytes decodes and builds an artifact payload.
func LoadBytes(data []byte, format models.ArtifactFormat) (*Bundle, error) {
	a, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return a.Build()
}

// LoadFile loads an artifact from the local filesystem.
func LoadFile(path string) (*Bundle, error) {
	source := "file:" + path

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, unavailable(source, err)
	}

	bundle, err := LoadBytes(data, FormatFromPath(path))
	if err != nil {
		return nil, unavailable(source, err)
	}

	logLoaded(source, bundle)
	return bundle, nil
}

// LoadObject loads an artifact from an object store.
func LoadObject(ctx context.Context, store ObjectStore, key string) (*Bundle, error) {
	source := "s3:" + key

	data, err := store.DownloadFile(ctx, key)
	if err != nil {
		return nil, unavailable(source, err)
	}

	bundle, err := LoadBytes(data, FormatFromPath(key))
	if err != nil {
		return nil, unavailable(source, err)
	}

	logLoaded(source, bundle)
	return bundle, nil
}

// LoadRegistry loads a named artifact from the model registry.
func LoadRegistry(ctx context.Context, reg Registry, name, version string) (*Bundle, error) {
	source := "registry:" + name
	if version != "" {
		source += "@" + version
	}

	rec, err := reg.GetArtifact(ctx, name, version)
	if err != nil {
		return nil, unavailable(source, err)
	}
	if rec == nil {
		return nil, unavailable(source, models.ErrArtifactNotFound)
	}

	bundle, err := LoadBytes(rec.Payload, rec.Format)
	if err != nil {
		return nil, unavailable(source, err)
	}
	if bundle.Version != rec.Version {
		return nil, unavailable(source, fmt.Errorf("%w: payload version %q differs from registry version %q",
			models.ErrInvalidArtifact, bundle.Version, rec.Version))
	}

	logLoaded(source, bundle)
	return bundle, nil
}

func unavailable(source string, err error) error {
	return &models.ClassifierUnavailableError{Source: source, Err: err}
}

func logLoaded(source string, b *Bundle) {
	utils.GetLogger().Info("Loaded churn model",
		zap.String("source", source),
		zap.String("name", b.Name),
		zap.String("version", b.Version),
		zap.String("model_type", b.ModelType),
		zap.Ints("classes", b.Classifier.Classes()),
		zap.Strings("gender_classes", b.Gender.Classes()),
	)
}
