// Package model defines the core domain models used throughout the application.
package model

// ExpenseType indicates whether an expense is a recurring obligation or
// discretionary spending.
type ExpenseType string

// Expense type constants.
const (
	ExpenseFixed    ExpenseType = "FIXED"
	ExpenseVariable ExpenseType = "VARIABLE"
)

// Reason identifies which evidence source dominated a classification.
type Reason string

// Classification reason constants.
const (
	ReasonKeyword          Reason = "keyword"
	ReasonAmountPattern    Reason = "amount_pattern"
	ReasonTemporalPattern  Reason = "temporal_pattern"
	ReasonStability        Reason = "stability"
	ReasonEnrichment       Reason = "enrichment"
	ReasonFeedbackExact    Reason = "feedback_exact"
	ReasonFeedbackPartial  Reason = "feedback_partial"
	ReasonFeedbackAdjusted Reason = "feedback_adjusted"
	ReasonFallback         Reason = "fallback"
)

// SignalResult is the output of a single signal extractor. Score is signed:
// positive leans FIXED, negative leans VARIABLE. Factors exist purely for
// explainability and must never be dropped when the score is non-zero.
type SignalResult struct {
	Factors []string
	Score   float64
}

// ClassificationResult is the engine's output contract. ExpenseType is never
// absent; when no signal fires the result defaults to VARIABLE with low
// confidence.
type ClassificationResult struct {
	ExpenseType         ExpenseType
	SuggestedTag        string
	Explanation         string
	AlternativeTags     []string
	ContributingFactors []string
	PrimaryReason       Reason
	Confidence          float64
	AutoApply           bool
}
