package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"churn-prediction-engine/internal/services/predictor"
)

// Pinger reports connectivity of an optional dependency (the model registry).
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	svc      *predictor.Service
	registry Pinger
	stage    string
}

// NewHealthHandler creates a new health handler. registry may be nil when
// the model was not loaded from Postgres.
func NewHealthHandler(svc *predictor.Service, registry Pinger, stage string) *HealthHandler {
	return &HealthHandler{svc: svc, registry: registry, stage: stage}
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status       string  `json:"status"`
	Timestamp    string  `json:"timestamp"`
	Service      string  `json:"service"`
	Version      string  `json:"version"`
	Stage        string  `json:"stage"`
	Model        string  `json:"model"`
	ModelVersion string  `json:"model_version"`
	Threshold    float64 `json:"threshold"`
	Registry     string  `json:"registry,omitempty"`
}

// Check builds the health report and its status code.
func (h *HealthHandler) Check(ctx context.Context) (HealthResponse, int) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "churn-prediction-engine",
		Version:   getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
		Stage:     h.stage,
	}

	if h.svc != nil {
		response.Model = h.svc.ModelName()
		response.ModelVersion = h.svc.ModelVersion()
		response.Threshold = h.svc.Threshold()
	} else {
		response.Status = "unhealthy"
	}

	// The model is already in memory; a registry outage only degrades.
	if h.registry != nil {
		if err := h.registry.HealthCheck(ctx); err != nil {
			response.Registry = "disconnected"
			if response.Status == "healthy" {
				response.Status = "degraded"
			}
		} else {
			response.Registry = "connected"
		}
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	return response, statusCode
}

// Handle processes health check requests from API Gateway.
func (h *HealthHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	response, statusCode := h.Check(ctx)
	body, _ := json.Marshal(response)

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    lambdaHeaders(),
		Body:       string(body),
	}, nil
}

// ServeHTTP serves the health report over HTTP.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response, statusCode := h.Check(r.Context())
	writeJSON(w, statusCode, response)
}

// getEnvOrDefault returns environment variable or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
