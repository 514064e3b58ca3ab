package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"churn-prediction-engine/internal/services/predictor"
	"churn-prediction-engine/internal/utils"
)

// PredictHandler scores customers submitted through API Gateway.
type PredictHandler struct {
	svc *predictor.Service
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(svc *predictor.Service) *PredictHandler {
	return &PredictHandler{svc: svc}
}

// Handle processes prediction requests. Prediction failures are reported in
// the result body with status 200; only unreadable bodies are rejected.
func (h *PredictHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := lambdaHeaders()

	// Handle CORS preflight
	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	if request.HTTPMethod != "" && request.HTTPMethod != http.MethodPost {
		return errorResponse(headers, http.StatusMethodNotAllowed, "Only POST is supported")
	}

	body := []byte(request.Body)
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			return errorResponse(headers, http.StatusBadRequest, "Invalid base64 request body")
		}
		body = decoded
	}

	fields, err := ParseFields(headerValue(request.Headers, "Content-Type"), body)
	if err != nil {
		utils.GetLogger().Warn("Rejected prediction request", zap.Error(err))
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}

	if id := lambdaRequestID(request); id != "" {
		ctx = predictor.WithRequestID(ctx, id)
	}
	result := h.svc.Predict(ctx, fields)

	respBody, err := json.Marshal(result)
	if err != nil {
		return errorResponse(headers, http.StatusInternalServerError, "Failed to encode result")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       string(respBody),
	}, nil
}

// ServeHTTP scores a form-encoded or JSON POST body.
func (h *PredictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields, err := requestFields(w, r)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err.Error())
		return
	}

	ctx := r.Context()
	if id := requestIDFromContext(ctx); id != "" {
		ctx = predictor.WithRequestID(ctx, id)
	}

	writeJSON(w, http.StatusOK, h.svc.Predict(ctx, fields))
}

func lambdaHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Methods": "POST, OPTIONS",
		"Content-Type":                 "application/json",
	}
}

// errorResponse creates an error response.
func errorResponse(headers map[string]string, statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"error":   http.StatusText(statusCode),
		"message": message,
	})

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}
