// Package engine implements the unified classification coordinator: the
// public entry point combining learned feedback patterns, the signal
// ensemble and the optional enrichment collaborator into one
// confidence-scored decision.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/centime-app/centime/internal/common"
	"github.com/centime-app/centime/internal/ensemble"
	"github.com/centime-app/centime/internal/feedback"
	"github.com/centime-app/centime/internal/model"
	"github.com/centime-app/centime/internal/normalize"
	"github.com/centime-app/centime/internal/service"
)

// AutoApplyThreshold is the confidence level above which a suggested
// classification may be applied without explicit user confirmation.
const AutoApplyThreshold = 0.80

const (
	// feedbackMatchFloor gates both exact and partial feedback matches.
	feedbackMatchFloor = 0.5
	// enrichmentWeight makes the external lookup comparable to a single
	// extractor, never dominant.
	enrichmentWeight = 0.15
	// fallbackConfidence is the documented constant for the last-resort path.
	fallbackConfidence = 0.3
	fallbackTag        = "divers"
)

// Config holds configuration options for the classification engine.
type Config struct {
	Enricher     service.Enricher
	BatchWorkers int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{BatchWorkers: 4}
}

// Engine coordinates classification and learning. All state lives in the
// feedback store; the engine itself is stateless per call.
type Engine struct {
	store       *feedback.Store
	ensemble    *ensemble.Ensemble
	corrections service.CorrectionLog
	enricher    service.Enricher
	workers     int
}

// New creates an engine with the default configuration.
func New(store *feedback.Store, corrections service.CorrectionLog) *Engine {
	return NewWithConfig(store, corrections, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(store *feedback.Store, corrections service.CorrectionLog, config Config) *Engine {
	workers := config.BatchWorkers
	if workers <= 0 {
		workers = DefaultConfig().BatchWorkers
	}
	return &Engine{
		store:       store,
		ensemble:    ensemble.New(),
		corrections: corrections,
		enricher:    config.Enricher,
		workers:     workers,
	}
}

// Classify produces a classification decision for one transaction. It always
// returns a usable result: invalid input degrades to the fallback path, and
// collaborator failures degrade confidence rather than erroring.
//
// Priority order, first match wins: exact feedback match, partial feedback
// match, ensemble inference with correction penalty, safe fallback.
func (e *Engine) Classify(ctx context.Context, txn model.Transaction, history []model.Transaction) model.ClassificationResult {
	if txn.MerchantName == "" {
		txn.MerchantName = normalize.Merchant(txn.Name)
	}

	if result := e.fromFeedback(txn); result != nil {
		return *result
	}
	return e.fromEnsemble(ctx, txn, history)
}

// fromFeedback resolves the two learned-pattern states of the decision
// chain. A nil store or an unmatchable merchant skips straight to the
// ensemble.
func (e *Engine) fromFeedback(txn model.Transaction) *model.ClassificationResult {
	if e.store == nil {
		slog.Warn("Feedback pattern store unavailable, falling back to ensemble")
		return nil
	}
	match := e.store.Lookup(txn.MerchantName)
	if match == nil || match.Pattern.Confidence < feedbackMatchFloor {
		return nil
	}

	pattern := match.Pattern
	reason := model.ReasonFeedbackExact
	factor := fmt.Sprintf("learned pattern for %q (%d corrections, success rate %.0f%%)",
		pattern.MerchantKey, pattern.UseCount, pattern.SuccessRate*100)
	if match.Partial {
		reason = model.ReasonFeedbackPartial
		factor = fmt.Sprintf("partial match against learned pattern %q (%d corrections)",
			pattern.MerchantKey, pattern.UseCount)
	} else {
		e.store.RecordUsage(pattern.MerchantKey)
	}

	return &model.ClassificationResult{
		ExpenseType:         pattern.ExpenseType,
		Confidence:          pattern.Confidence,
		SuggestedTag:        pattern.Tag,
		Explanation:         fmt.Sprintf("matched learned pattern %q with confidence %.2f", pattern.MerchantKey, pattern.Confidence),
		ContributingFactors: []string{factor},
		PrimaryReason:       reason,
		AutoApply:           pattern.Confidence >= AutoApplyThreshold,
	}
}

// fromEnsemble runs the signal ensemble, consults the optional enrichment
// collaborator below the auto-apply threshold, and applies the global
// correction-frequency penalty.
func (e *Engine) fromEnsemble(ctx context.Context, txn model.Transaction, history []model.Transaction) model.ClassificationResult {
	result := e.ensemble.Classify(txn, history)

	if result.Confidence < AutoApplyThreshold {
		if hint := e.lookupEnrichment(ctx, txn.MerchantName); hint != nil {
			result = e.ensemble.Classify(txn, history, ensemble.ExtraSignal{
				Name:   "enrichment",
				Weight: enrichmentWeight,
				Result: hintSignal(hint),
				Reason: model.ReasonEnrichment,
			})
			if hint.Tag != "" && hint.Tag != result.SuggestedTag {
				result.AlternativeTags = prependTag(result.AlternativeTags, hint.Tag)
			}
		}
	}

	result = e.applyCorrectionPenalty(result)

	// Should not normally occur: the ensemble never answers below 0.1.
	if result.Confidence < 0.1 {
		result = model.ClassificationResult{
			ExpenseType:   model.ExpenseVariable,
			Confidence:    fallbackConfidence,
			SuggestedTag:  fallbackTag,
			Explanation:   "no usable signal; defaulting to variable expense",
			PrimaryReason: model.ReasonFallback,
		}
	}

	result.AutoApply = result.Confidence >= AutoApplyThreshold
	return result
}

// applyCorrectionPenalty downgrades ensemble outputs the user has
// repeatedly corrected, surfacing the usual correction as top alternative.
func (e *Engine) applyCorrectionPenalty(result model.ClassificationResult) model.ClassificationResult {
	if e.store == nil || result.PrimaryReason == model.ReasonFallback {
		return result
	}
	penalty := e.store.PenaltyFor(result.SuggestedTag, result.ExpenseType)
	if penalty == nil {
		return result
	}

	result.Confidence -= penalty.Amount
	if result.Confidence < 0.1 {
		result.Confidence = 0.1
	}
	result.PrimaryReason = model.ReasonFeedbackAdjusted
	if penalty.CommonTag != "" && penalty.CommonTag != result.SuggestedTag {
		result.AlternativeTags = prependTag(result.AlternativeTags, penalty.CommonTag)
	}
	result.ContributingFactors = append(result.ContributingFactors,
		fmt.Sprintf("similar predictions were usually corrected to %q; confidence reduced by %.2f", penalty.CommonTag, penalty.Amount))
	result.Explanation += fmt.Sprintf(" (adjusted: usually corrected to %q)", penalty.CommonTag)
	return result
}

// lookupEnrichment consults the best-effort external classifier. Failure or
// absence contributes zero signal, never an error.
func (e *Engine) lookupEnrichment(ctx context.Context, merchantKey string) *service.EnrichmentHint {
	if e.enricher == nil || merchantKey == "" {
		return nil
	}

	var hint *service.EnrichmentHint
	err := common.WithRetry(ctx, func() error {
		var lookupErr error
		hint, lookupErr = e.enricher.Lookup(ctx, merchantKey)
		if lookupErr != nil {
			return &common.RetryableError{Err: lookupErr, Retryable: true}
		}
		return nil
	}, service.RetryOptions{
		MaxAttempts:  2,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	})
	if err != nil {
		slog.Warn("Enrichment lookup failed, continuing without it",
			"merchant", merchantKey,
			"error", err)
		return nil
	}
	return hint
}

// RecordCorrection records one user correction: it re-derives what the
// engine currently says (the "before" side of the record), appends to the
// durable correction log and folds the correction into the live store so
// subsequent classifications see it immediately.
func (e *Engine) RecordCorrection(ctx context.Context, txn model.Transaction, correctedTag string, correctedType model.ExpenseType) error {
	before := e.Classify(ctx, txn, nil)

	record := &model.CorrectionRecord{
		Label:                txn.Name,
		OriginalTag:          before.SuggestedTag,
		OriginalExpenseType:  before.ExpenseType,
		CorrectedTag:         correctedTag,
		CorrectedExpenseType: correctedType,
		ConfidenceBefore:     before.Confidence,
		CreatedAt:            time.Now(),
	}

	// Durable append first: if it fails the live projection stays in step
	// with the log instead of running ahead of it.
	if e.corrections != nil {
		if err := e.corrections.AppendCorrection(ctx, record); err != nil {
			return fmt.Errorf("failed to persist correction: %w", err)
		}
	}

	e.store.RecordCorrection(record)

	slog.Info("Recorded correction",
		"merchant", normalize.Merchant(txn.Name),
		"tag", correctedTag,
		"expense_type", correctedType)
	return nil
}

// ReloadPatterns rebuilds the feedback store from the correction log.
func (e *Engine) ReloadPatterns(ctx context.Context) error {
	if e.corrections == nil {
		return common.ErrMissingCorrectionLog
	}
	return e.store.Reload(ctx, e.corrections)
}

// GetStatistics reports the state of the learned projections.
func (e *Engine) GetStatistics() model.LearningStats {
	return e.store.Stats()
}

func hintSignal(hint *service.EnrichmentHint) model.SignalResult {
	score := hint.Confidence
	if hint.ExpenseType != model.ExpenseFixed {
		score = -score
	}
	return model.SignalResult{
		Score:   score,
		Factors: []string{fmt.Sprintf("external lookup suggests %q (%s)", hint.Tag, hint.ExpenseType)},
	}
}

func prependTag(tags []string, tag string) []string {
	out := []string{tag}
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}
