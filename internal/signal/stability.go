package signal

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/centime-app/centime/internal/model"
)

// Thresholds for amount stability, expressed as coefficient of variation
// (stdev/mean). Below lowVariation strongly implies FIXED; above
// highVariation implies VARIABLE.
const (
	lowVariation  = 0.10
	highVariation = 0.25
)

// StabilityExtractor computes amount and interval statistics over the
// transaction history of the same merchant. With fewer than two history
// points it abstains: absence of data is never evidence either way.
type StabilityExtractor struct{}

// NewStabilityExtractor creates a stability/frequency extractor.
func NewStabilityExtractor() *StabilityExtractor {
	return &StabilityExtractor{}
}

// Name implements Extractor.
func (e *StabilityExtractor) Name() string { return "stability" }

// Extract implements Extractor.
func (e *StabilityExtractor) Extract(_ model.Transaction, history []model.Transaction) *model.SignalResult {
	if len(history) < 2 {
		return nil
	}

	var factors []string

	amountScore, amountFactor := amountStability(history)
	if amountFactor != "" {
		factors = append(factors, amountFactor)
	}

	intervalScore, intervalFactor := intervalRegularity(history)
	if intervalFactor != "" {
		factors = append(factors, intervalFactor)
	}

	if len(factors) == 0 {
		return nil
	}

	return &model.SignalResult{
		Score:   clampScore(0.6*amountScore + 0.5*intervalScore),
		Factors: factors,
	}
}

// amountStability scores the coefficient of variation of historical amounts.
func amountStability(history []model.Transaction) (float64, string) {
	amounts := make([]float64, 0, len(history))
	for _, txn := range history {
		amounts = append(amounts, math.Abs(txn.Amount))
	}

	mean := meanOf(amounts)
	if mean == 0 {
		return 0, ""
	}
	cv := stdevOf(amounts, mean) / mean

	switch {
	case cv <= 0.02:
		return 1.0, fmt.Sprintf("amounts virtually identical over %d transactions", len(history))
	case cv < lowVariation:
		return 0.8, fmt.Sprintf("stable amounts (variation %.0f%%)", cv*100)
	case cv < highVariation:
		graded := 0.8 * (highVariation - cv) / (highVariation - lowVariation)
		return graded, fmt.Sprintf("moderately stable amounts (variation %.0f%%)", cv*100)
	default:
		return -0.7, fmt.Sprintf("highly variable amounts (variation %.0f%%)", cv*100)
	}
}

// intervalRegularity scores inter-transaction intervals. Intervals
// clustering near 30 days with low variance strongly imply a monthly
// recurrence.
func intervalRegularity(history []model.Transaction) (float64, string) {
	dates := make([]time.Time, 0, len(history))
	for _, txn := range history {
		if !txn.Date.IsZero() {
			dates = append(dates, txn.Date)
		}
	}
	if len(dates) < 3 {
		return 0, ""
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	intervals := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		intervals = append(intervals, dates[i].Sub(dates[i-1]).Hours()/24)
	}

	mean := meanOf(intervals)
	if mean <= 0 {
		return 0, ""
	}
	stdev := stdevOf(intervals, mean)

	if mean >= 24 && mean <= 36 {
		if stdev <= 0.2*mean {
			return 1.0, fmt.Sprintf("monthly recurrence (every %.0f days)", mean)
		}
		return 0.5, fmt.Sprintf("roughly monthly recurrence (every %.0f days)", mean)
	}

	return 0, ""
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdevOf(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
