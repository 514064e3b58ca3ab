// Batch Score Lambda entry point, triggered by CSV uploads to S3
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"churn-prediction-engine/internal/bootstrap"
	"churn-prediction-engine/internal/config"
	"churn-prediction-engine/internal/handlers"
	"churn-prediction-engine/internal/services/batch"
	s3service "churn-prediction-engine/internal/services/s3"
	"churn-prediction-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	ctx := context.Background()

	rt, err := bootstrap.NewRuntime(ctx, cfg)
	if err != nil {
		panic("Failed to load churn model: " + err.Error())
	}

	store, err := s3service.NewService(ctx, cfg)
	if err != nil {
		panic("Failed to create S3 client: " + err.Error())
	}

	handler := handlers.NewBatchProcessorHandler(store, batch.NewScorer(rt.Service))

	// Start Lambda
	lambda.Start(handler.Handle)
}
