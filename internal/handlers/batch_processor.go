package handlers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"churn-prediction-engine/internal/services/batch"
	s3service "churn-prediction-engine/internal/services/s3"
	"churn-prediction-engine/internal/utils"
)

// ScoredPrefix is where batch results are written, next to the input bucket.
const ScoredPrefix = "scored/"

// BatchProcessorHandler scores customer CSV files dropped into S3.
type BatchProcessorHandler struct {
	store  *s3service.Service
	scorer *batch.Scorer
}

// NewBatchProcessorHandler creates a new batch processor handler.
func NewBatchProcessorHandler(store *s3service.Service, scorer *batch.Scorer) *BatchProcessorHandler {
	return &BatchProcessorHandler{store: store, scorer: scorer}
}

// BatchProcessResult is the result of processing an S3 event.
type BatchProcessResult struct {
	Message string           `json:"message"`
	Batches []*batch.Summary `json:"batches,omitempty"`
	Outputs []string         `json:"outputs,omitempty"`
}

// Handle processes S3 events for uploaded CSV files.
func (h *BatchProcessorHandler) Handle(ctx context.Context, s3Event events.S3Event) (BatchProcessResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return BatchProcessResult{Message: "No records to process"}, nil
	}

	var result BatchProcessResult
	for _, record := range s3Event.Records {
		bucket := record.S3.Bucket.Name
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return result, fmt.Errorf("failed to decode S3 key: %w", err)
		}

		// Our own output lands in the same bucket.
		if strings.HasPrefix(key, ScoredPrefix) || !strings.EqualFold(path.Ext(key), ".csv") {
			logger.Info("Skipping object", utils.String("bucket", bucket), utils.String("key", key))
			continue
		}

		logger.Info("Processing CSV file",
			utils.String("bucket", bucket),
			utils.String("key", key))

		store := h.store.ForBucket(bucket)
		data, err := store.DownloadFile(ctx, key)
		if err != nil {
			return result, fmt.Errorf("failed to download CSV: %w", err)
		}

		batchID := generateBatchID(key)
		start := time.Now()

		var out bytes.Buffer
		summary, err := h.scorer.Run(ctx, batchID, string(data), &out)
		if err != nil {
			logger.Error("Failed to score CSV", utils.String("key", key), utils.Error(err))
			result.Batches = append(result.Batches, summary)
			continue
		}

		outKey := OutputKey(key)
		if err := store.UploadFile(ctx, outKey, out.Bytes(), "application/x-ndjson"); err != nil {
			return result, fmt.Errorf("failed to upload results: %w", err)
		}

		logger.Info("Batch scored",
			utils.String("batch_id", batchID),
			utils.String("output_key", outKey),
			utils.Int("rows", summary.Rows),
			utils.Int("likely_to_churn", summary.LikelyToChurn),
			utils.Duration("elapsed", time.Since(start)))

		result.Batches = append(result.Batches, summary)
		result.Outputs = append(result.Outputs, "s3://"+bucket+"/"+outKey)
	}

	result.Message = fmt.Sprintf("Scored %d file(s)", len(result.Outputs))
	return result, nil
}

// OutputKey maps an input key to its results key.
func OutputKey(key string) string {
	return ScoredPrefix + strings.TrimSuffix(key, path.Ext(key)) + ".jsonl"
}

// generateBatchID generates a unique batch ID for this upload.
func generateBatchID(key string) string {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	hash := sha256.Sum256([]byte(key + timestamp))
	return hex.EncodeToString(hash[:])[:16]
}
