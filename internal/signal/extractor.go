// Package signal implements the independent evidence extractors feeding the
// classification ensemble. Each extractor is a pure function of its inputs:
// a positive score leans FIXED, a negative score leans VARIABLE, and a nil
// result means the extractor abstains. Absence of data is never evidence.
package signal

import (
	"github.com/centime-app/centime/internal/model"
)

// Extractor scores one independent evidence signal for a transaction.
type Extractor interface {
	// Name identifies the extractor in logs and explanations.
	Name() string
	// Extract returns a signed contribution score with human-readable
	// factors, or nil when the extractor has nothing to say.
	Extract(txn model.Transaction, history []model.Transaction) *model.SignalResult
}

// DefaultExtractors returns the standard extractor set in priority order.
// The order determines how contributing factors are concatenated.
func DefaultExtractors() []Extractor {
	return []Extractor{
		NewKeywordExtractor(),
		NewContextExtractor(),
		NewAmountExtractor(),
		NewTemporalExtractor(),
		NewStabilityExtractor(),
	}
}

func clampScore(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
