package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"churn-prediction-engine/internal/models"
	"churn-prediction-engine/internal/services/predictor"
	"churn-prediction-engine/internal/utils"
)

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

// InfoResponse describes the service on the landing route.
type InfoResponse struct {
	Service      string   `json:"service"`
	Model        string   `json:"model"`
	ModelVersion string   `json:"model_version"`
	Threshold    float64  `json:"threshold"`
	Fields       []string `json:"fields"`
	Endpoints    []string `json:"endpoints"`
}

// NewRouter registers the HTTP routes and middleware stack.
func NewRouter(svc *predictor.Service, health *HealthHandler) http.Handler {
	predict := NewPredictHandler(svc)

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, InfoResponse{
			Service:      "churn-prediction-engine",
			Model:        svc.ModelName(),
			ModelVersion: svc.ModelVersion(),
			Threshold:    svc.Threshold(),
			Fields:       models.InputFields(),
			Endpoints:    []string{"GET /", "GET /health", "POST /predict/"},
		})
	})
	r.Method(http.MethodGet, "/health", health)
	r.Method(http.MethodPost, "/predict", predict)
	r.Method(http.MethodPost, "/predict/", predict)

	return r
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				utils.GetLogger().Error("Panic recovered",
					zap.String("request_id", requestIDFromContext(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(payload []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(payload)
	r.bytes += n
	return n, err
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)

		statusCode := recorder.statusCode
		if statusCode == 0 {
			statusCode = http.StatusOK
		}

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status_code", statusCode),
			zap.Int("bytes", recorder.bytes),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", requestIDFromContext(r.Context())),
		}
		switch {
		case statusCode >= 500:
			utils.GetLogger().Error("HTTP request completed", fields...)
		case statusCode >= 400:
			utils.GetLogger().Warn("HTTP request completed", fields...)
		default:
			utils.GetLogger().Info("HTTP request completed", fields...)
		}
	})
}

func requestIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return s
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
