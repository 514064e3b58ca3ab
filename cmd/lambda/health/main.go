// Health Check Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"churn-prediction-engine/internal/bootstrap"
	"churn-prediction-engine/internal/config"
	"churn-prediction-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	rt, err := bootstrap.NewRuntime(context.Background(), cfg)
	if err != nil {
		panic("Failed to load churn model: " + err.Error())
	}

	// Start Lambda
	lambda.Start(rt.HealthHandler().Handle)
}
