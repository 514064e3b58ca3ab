// Package bootstrap wires configuration, the model artifact and the
// prediction service into a runtime shared by every entry point.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"churn-prediction-engine/internal/config"
	"churn-prediction-engine/internal/handlers"
	"churn-prediction-engine/internal/models"
	"churn-prediction-engine/internal/services/classifier"
	"churn-prediction-engine/internal/services/database"
	"churn-prediction-engine/internal/services/decision"
	"churn-prediction-engine/internal/services/predictor"
	s3service "churn-prediction-engine/internal/services/s3"
	"churn-prediction-engine/internal/utils"
)

// Runtime holds the process-wide, read-only dependencies.
type Runtime struct {
	Config   *config.Config
	Service  *predictor.Service
	Registry *database.DB
}

// NewRuntime loads the model from the configured source. Any failure here
// is a *models.ClassifierUnavailableError or a configuration error, and the
// process must not start serving.
func NewRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	logger := utils.GetLogger()
	logger.Info("Bootstrapping churn prediction engine",
		zap.String("model_source", cfg.ModelSource),
		zap.Float64("threshold", cfg.ChurnThreshold),
		zap.String("stage", cfg.Stage),
	)

	engine, err := decision.New(cfg.ChurnThreshold)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg}

	bundle, err := rt.loadModel(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}

	svc, err := predictor.New(bundle, engine, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Service = svc

	return rt, nil
}

func (rt *Runtime) loadModel(ctx context.Context) (*classifier.Bundle, error) {
	cfg := rt.Config

	switch cfg.ModelSource {
	case config.ModelSourceFile:
		return classifier.LoadFile(cfg.ModelPath)

	case config.ModelSourceS3:
		store, err := s3service.NewService(ctx, cfg)
		if err != nil {
			return nil, &models.ClassifierUnavailableError{Source: "s3:" + cfg.ModelS3Key, Err: err}
		}
		return classifier.LoadObject(ctx, store, cfg.ModelS3Key)

	case config.ModelSourcePostgres:
		db, err := database.New(cfg)
		if err != nil {
			return nil, &models.ClassifierUnavailableError{Source: "registry:" + cfg.ModelName, Err: err}
		}
		rt.Registry = db
		return classifier.LoadRegistry(ctx, database.NewArtifactRepository(db), cfg.ModelName, cfg.ModelVersion)

	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownModelSource, cfg.ModelSource)
	}
}

// HealthHandler builds the health handler, reporting the registry only when
// the model came from it.
func (rt *Runtime) HealthHandler() *handlers.HealthHandler {
	var registry handlers.Pinger
	if rt.Registry != nil {
		registry = rt.Registry
	}
	return handlers.NewHealthHandler(rt.Service, registry, rt.Config.Stage)
}

// Close releases the registry connection, if any.
func (rt *Runtime) Close() {
	if rt.Registry != nil {
		rt.Registry.Close()
		rt.Registry = nil
	}
}
