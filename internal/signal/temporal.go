package signal

import (
	"fmt"
	"time"

	"github.com/centime-app/centime/internal/model"
)

// TemporalExtractor scores transaction timing. Automated direct debits
// cluster in early-month night-hour processing windows; discretionary
// spending clusters on weekend afternoons. Returns a graded score.
type TemporalExtractor struct{}

// NewTemporalExtractor creates a temporal pattern extractor.
func NewTemporalExtractor() *TemporalExtractor {
	return &TemporalExtractor{}
}

// Name implements Extractor.
func (e *TemporalExtractor) Name() string { return "temporal" }

// Extract implements Extractor.
func (e *TemporalExtractor) Extract(txn model.Transaction, _ []model.Transaction) *model.SignalResult {
	if txn.Date.IsZero() {
		return nil
	}

	var score float64
	var factors []string

	day := txn.Date.Day()
	switch {
	case day <= 5:
		score += 0.4
		factors = append(factors, fmt.Sprintf("early-month processing (day %d)", day))
	case day <= 10:
		score += 0.2
		factors = append(factors, fmt.Sprintf("first third of the month (day %d)", day))
	}

	// Date-only imports carry a midnight timestamp; skip hour heuristics
	// when no real time of day is present.
	hour := txn.Date.Hour()
	hasTime := hour != 0 || txn.Date.Minute() != 0 || txn.Date.Second() != 0
	if hasTime {
		if hour < 6 || hour >= 22 {
			score += 0.4
			factors = append(factors, fmt.Sprintf("night-hour processing (%02dh)", hour))
		} else if hour >= 12 && hour < 19 {
			score -= 0.3
			factors = append(factors, fmt.Sprintf("afternoon purchase (%02dh)", hour))
		}
	}

	weekday := txn.Date.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		score -= 0.4
		factors = append(factors, fmt.Sprintf("weekend spending (%s)", weekday))
	}

	if len(factors) == 0 {
		return nil
	}

	return &model.SignalResult{
		Score:   clampScore(score),
		Factors: factors,
	}
}
