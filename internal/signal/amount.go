package signal

import (
	"fmt"
	"math"

	"github.com/centime-app/centime/internal/model"
)

// subscriptionTiers are common subscription price points. An exact match is
// strong evidence of a recurring charge.
var subscriptionTiers = []float64{
	2.99, 4.99, 5.99, 6.99, 7.99, 9.99, 11.99, 12.99,
	14.99, 17.99, 19.99, 24.99, 29.99, 39.99, 49.99, 59.99,
}

// AmountExtractor scores the transaction amount against pricing heuristics.
// Pure function of the amount only.
type AmountExtractor struct{}

// NewAmountExtractor creates an amount pattern extractor.
func NewAmountExtractor() *AmountExtractor {
	return &AmountExtractor{}
}

// Name implements Extractor.
func (e *AmountExtractor) Name() string { return "amount" }

// Extract implements Extractor.
func (e *AmountExtractor) Extract(txn model.Transaction, _ []model.Transaction) *model.SignalResult {
	amount := math.Abs(txn.Amount)
	if amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil
	}

	// Exact subscription tier beats every other band.
	for _, tier := range subscriptionTiers {
		if math.Abs(amount-tier) < 0.005 {
			return &model.SignalResult{
				Score:   0.9,
				Factors: []string{fmt.Sprintf("amount matches subscription price point %.2f", tier)},
			}
		}
	}

	cents := math.Round(amount*100) - math.Floor(amount)*100
	if cents == 99 {
		return &model.SignalResult{
			Score:   0.6,
			Factors: []string{fmt.Sprintf("psychological pricing %.2f suggests a subscription", amount)},
		}
	}

	// Large round amounts cluster on rent, loan payments and other
	// recurring obligations.
	if amount >= 300 && math.Mod(amount, 50) == 0 {
		return &model.SignalResult{
			Score:   0.4,
			Factors: []string{fmt.Sprintf("large round amount %.2f resembles a recurring obligation", amount)},
		}
	}

	if amount < 15 {
		return &model.SignalResult{
			Score:   -0.3,
			Factors: []string{fmt.Sprintf("small amount %.2f resembles a discretionary purchase", amount)},
		}
	}

	if amount < 100 {
		return &model.SignalResult{
			Score:   -0.2,
			Factors: []string{fmt.Sprintf("mid-range amount %.2f without a pricing pattern", amount)},
		}
	}

	// Large, non-round amounts are ambiguous; abstain.
	return nil
}
