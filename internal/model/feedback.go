package model

import "time"

// FeedbackPattern is a learned merchant → (tag, expense type) mapping derived
// from accumulated user corrections. Confidence grows with use, saturating
// well short of certainty.
type FeedbackPattern struct {
	LastUsed    time.Time
	MerchantKey string
	Tag         string
	ExpenseType ExpenseType
	Confidence  float64
	SuccessRate float64
	UseCount    int
}

// CorrectionRecord is one entry of the append-only correction log owned by
// the persistence layer. The engine replays and aggregates these records;
// it never mutates past entries.
type CorrectionRecord struct {
	CreatedAt            time.Time
	Label                string
	OriginalTag          string
	CorrectedTag         string
	OriginalExpenseType  ExpenseType
	CorrectedExpenseType ExpenseType
	ConfidenceBefore     float64
	ID                   int64
}

// LearningStats summarizes the state of the feedback store for observability.
type LearningStats struct {
	TotalPatterns          int
	HighConfidencePatterns int
	AverageConfidence      float64
	CorrectionPenaltyCount int
}
