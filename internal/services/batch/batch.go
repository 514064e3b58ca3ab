// Package batch scores customer CSV files through the prediction pipeline.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"churn-prediction-engine/internal/models"
	"churn-prediction-engine/internal/services/predictor"
	"churn-prediction-engine/internal/utils"
)

// maxReportedErrors caps the parse errors kept in a Summary.
const maxReportedErrors = 10

// Record is one line of batch output.
type Record struct {
	Line       int                 `json:"line"`
	CustomerID string              `json:"customer_id,omitempty"`
	Result     *models.ChurnResult `json:"result"`
}

// Summary describes a finished batch run.
type Summary struct {
	BatchID       string   `json:"batch_id"`
	Rows          int      `json:"rows"`
	Scored        int      `json:"scored"`
	Failed        int      `json:"failed"`
	LikelyToChurn int      `json:"likely_to_churn"`
	Skipped       int      `json:"skipped"`
	Errors        []string `json:"errors,omitempty"`
}

// Scorer runs every row of a CSV file through a predictor.Service.
type Scorer struct {
	svc    *predictor.Service
	logger *zap.Logger
}

// NewScorer creates a batch scorer.
func NewScorer(svc *predictor.Service) *Scorer {
	return &Scorer{svc: svc, logger: utils.GetLogger()}
}

// Run parses content and writes one JSON record per data row to w. Rows the
// CSV reader cannot map are skipped and listed in the summary; rows with bad
// values are scored into error results like any other request.
func (s *Scorer) Run(ctx context.Context, batchID, content string, w io.Writer) (*Summary, error) {
	summary := &Summary{BatchID: batchID}

	rows, parseErrors := utils.NewCSVParser().ParseCustomers(content)
	summary.Skipped = len(parseErrors)
	for i, e := range parseErrors {
		if i == maxReportedErrors {
			break
		}
		summary.Errors = append(summary.Errors, e.Error())
	}
	if len(rows) == 0 {
		return summary, fmt.Errorf("no rows to score: %w", parseErrors[0])
	}

	enc := json.NewEncoder(w)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		reqID := fmt.Sprintf("%s-%d", batchID, row.Line)
		result := s.svc.Predict(predictor.WithRequestID(ctx, reqID), row.Fields)

		summary.Rows++
		switch {
		case result.Error:
			summary.Failed++
		case result.IsPositive:
			summary.Scored++
			summary.LikelyToChurn++
		default:
			summary.Scored++
		}

		if err := enc.Encode(Record{Line: row.Line, CustomerID: row.CustomerID, Result: result}); err != nil {
			return summary, fmt.Errorf("failed to write result for line %d: %w", row.Line, err)
		}
	}

	s.logger.Info("Batch scored",
		zap.String("batch_id", batchID),
		zap.Int("rows", summary.Rows),
		zap.Int("failed", summary.Failed),
		zap.Int("likely_to_churn", summary.LikelyToChurn),
		zap.Int("skipped", summary.Skipped),
	)

	return summary, nil
}
