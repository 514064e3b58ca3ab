// Package predictor runs one churn prediction end to end: parse, encode,
// derive, score, decide and explain.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"churn-prediction-engine/internal/models"
	"churn-prediction-engine/internal/services/classifier"
	"churn-prediction-engine/internal/services/decision"
	"churn-prediction-engine/internal/services/explainer"
	"churn-prediction-engine/internal/services/features"
)

type requestIDKey struct{}

// WithRequestID attaches a request id that Predict copies into the result.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Service is the prediction pipeline. It is immutable after New and safe for
// concurrent use.
type Service struct {
	bundle    *classifier.Bundle
	engine    *decision.Engine
	explainer *explainer.Explainer
	logger    *zap.Logger
}

// New builds a Service around a loaded model bundle.
func New(bundle *classifier.Bundle, engine *decision.Engine, logger *zap.Logger) (*Service, error) {
	if bundle == nil || bundle.Classifier == nil || bundle.Gender == nil {
		return nil, models.ErrClassifierNotLoaded
	}
	if engine == nil {
		engine = decision.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		bundle:    bundle,
		engine:    engine,
		explainer: explainer.New(),
		logger:    logger,
	}, nil
}

// ModelName returns the loaded model's name.
func (s *Service) ModelName() string {
	return s.bundle.Name
}

// ModelVersion returns the loaded model's version.
func (s *Service) ModelVersion() string {
	return s.bundle.Version
}

// Threshold returns the decision threshold in use.
func (s *Service) Threshold() float64 {
	return s.engine.Threshold()
}

// Predict scores the raw form fields of one customer. It never returns an
// error: failures become a ChurnResult with Error set.
func (s *Service) Predict(ctx context.Context, fields map[string]string) (result *models.ChurnResult) {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered panic during prediction",
				zap.String("request_id", requestID),
				zap.Any("panic", r),
			)
			result = s.errorResult(requestID, fmt.Errorf("internal error: %v", r))
		}
	}()

	in, err := models.ParseCustomerInput(fields)
	if err != nil {
		s.logger.Warn("Rejected prediction input",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return s.errorResult(requestID, err)
	}

	pred, expl, err := s.Score(ctx, in)
	if err != nil {
		s.logger.Warn("Prediction failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return s.errorResult(requestID, err)
	}

	s.logger.Info("Prediction complete",
		zap.String("request_id", requestID),
		zap.Float64("churn_probability", pred.ChurnProbability),
		zap.Bool("decision", pred.Decision),
		zap.String("model_version", s.bundle.Version),
	)

	return s.successResult(requestID, pred, expl)
}

// Score runs the pipeline on parsed input. Unknown categories are rejected
// before the classifier is consulted.
func (s *Service) Score(ctx context.Context, in *models.CustomerInput) (*models.Prediction, *models.Explanation, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	genderCode, err := s.bundle.Gender.Encode(in.Gender)
	if err != nil {
		return nil, nil, err
	}

	derived := features.Derive(in, genderCode)
	fv := features.BuildVector(in, derived)
	if err := features.CheckFinite(fv); err != nil {
		return nil, nil, err
	}
	vec := fv.Slice()

	clf := s.bundle.Classifier
	prob, idx, err := classifier.ChurnProbability(clf, vec)
	if err != nil {
		return nil, nil, fmt.Errorf("predict_proba: %w", err)
	}
	if math.IsNaN(prob) || prob < 0 || prob > 1 {
		return nil, nil, fmt.Errorf("%w: %v", models.ErrInvalidProbability, prob)
	}
	label, err := clf.Predict(vec)
	if err != nil {
		return nil, nil, fmt.Errorf("predict: %w", err)
	}

	churning := s.engine.Decide(prob)
	expl := s.explainer.Explain(in, derived, churning)

	return &models.Prediction{
		ChurnProbability: prob,
		PredictedLabel:   label,
		Decision:         churning,
		Threshold:        s.engine.Threshold(),
		ProbIndexUsed:    idx,
		ModelClasses:     clf.Classes(),
	}, &expl, nil
}

func (s *Service) successResult(requestID string, pred *models.Prediction, expl *models.Explanation) *models.ChurnResult {
	prob := fmt.Sprintf("%.2f", pred.ChurnProbability)
	label := pred.PredictedLabel
	idx := pred.ProbIndexUsed

	text := models.ResultTextNotChurn
	if pred.Decision {
		text = models.ResultTextChurn
	}

	return &models.ChurnResult{
		RequestID:   requestID,
		ResultText:  text,
		Prob:        &prob,
		ProbPercent: int(pred.ChurnProbability * 100),
		Threshold:   pred.Threshold,
		IsPositive:  pred.Decision,
		Debug: &models.DebugInfo{
			ModelClasses:  pred.ModelClasses,
			RawPredict:    &label,
			ProbIndexUsed: &idx,
		},
		Reasons:      expl.Reasons,
		Advice:       expl.Advice,
		ModelVersion: s.bundle.Version,
	}
}

func (s *Service) errorResult(requestID string, err error) *models.ChurnResult {
	return &models.ChurnResult{
		RequestID:    requestID,
		ResultText:   ErrorText(err),
		Threshold:    s.engine.Threshold(),
		Debug:        &models.DebugInfo{},
		ModelVersion: s.bundle.Version,
		Error:        true,
	}
}

// ErrorText renders the user-facing message for a failed prediction.
func ErrorText(err error) string {
	var unknown *models.UnknownCategoryError
	if errors.As(err, &unknown) && unknown.Field == models.FieldGender {
		return fmt.Sprintf("❌ Invalid gender input: %s. Use %s.", unknown.Value, strings.Join(unknown.Known, " or "))
	}
	return fmt.Sprintf("❌ Error processing input: %v", err)
}
