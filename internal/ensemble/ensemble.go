// Package ensemble combines independent signal extractor outputs into a
// single confidence-scored classification decision.
package ensemble

import (
	"fmt"
	"math"
	"strings"

	"github.com/centime-app/centime/internal/model"
	"github.com/centime-app/centime/internal/signal"
)

// Signal weights are fixed configuration constants, not learned. They sum
// to 1; changing the balance between signals happens here and only here.
var signalWeights = map[string]float64{
	"keyword":   0.35,
	"amount":    0.15,
	"temporal":  0.10,
	"stability": 0.25,
	"context":   0.15,
}

// Confidence bounds. Single-signal decisions never reach maximum
// confidence, and the ensemble never answers below the floor.
const (
	minConfidence      = 0.10
	maxConfidence      = 0.95
	baseConfidence     = 0.30
	fallbackConfidence = 0.30
	fallbackTag        = "divers"
	maxAlternativeTags = 5
)

// primaryReasons maps extractor names to the reason enum. Contextual phrase
// evidence is keyword-class evidence.
var primaryReasons = map[string]model.Reason{
	"keyword":   model.ReasonKeyword,
	"context":   model.ReasonKeyword,
	"amount":    model.ReasonAmountPattern,
	"temporal":  model.ReasonTemporalPattern,
	"stability": model.ReasonStability,
}

// ExtraSignal lets the caller fold one more weighted signal into the
// decision, comparable to a single extractor. Used for the optional
// enrichment collaborator.
type ExtraSignal struct {
	Name   string
	Result model.SignalResult
	Weight float64
	Reason model.Reason
}

// Ensemble iterates a fixed-order extractor list and merges their outputs.
type Ensemble struct {
	extractors []signal.Extractor
}

// New creates an ensemble over the default extractor set.
func New() *Ensemble {
	return &Ensemble{extractors: signal.DefaultExtractors()}
}

// NewWithExtractors creates an ensemble over a custom extractor list.
// Extractors without a configured weight contribute nothing.
func NewWithExtractors(extractors []signal.Extractor) *Ensemble {
	return &Ensemble{extractors: extractors}
}

// Classify combines extractor outputs into a classification decision.
// The score is a weighted sum normalized by the weight mass of the
// contributing extractors; positive means FIXED, zero or negative means
// VARIABLE (the system is conservative about declaring a recurring
// obligation). Always returns a usable result.
func (e *Ensemble) Classify(txn model.Transaction, history []model.Transaction, extras ...ExtraSignal) model.ClassificationResult {
	type contribution struct {
		name   string
		score  float64
		weight float64
		reason model.Reason
	}

	var (
		weightedSum float64
		contribMass float64
		contribs    []contribution
		allFactors  []string
	)

	for _, ex := range e.extractors {
		result := ex.Extract(txn, history)
		if result == nil {
			continue
		}
		allFactors = append(allFactors, result.Factors...)
		if result.Score == 0 {
			continue
		}
		weight := signalWeights[ex.Name()]
		weightedSum += weight * result.Score
		contribMass += weight
		contribs = append(contribs, contribution{name: ex.Name(), score: result.Score, weight: weight, reason: primaryReasons[ex.Name()]})
	}

	for _, extra := range extras {
		if extra.Result.Score == 0 {
			continue
		}
		allFactors = append(allFactors, extra.Result.Factors...)
		reason := extra.Reason
		if reason == "" {
			reason = model.ReasonEnrichment
		}
		weightedSum += extra.Weight * extra.Result.Score
		contribMass += extra.Weight
		contribs = append(contribs, contribution{name: extra.Name, score: extra.Result.Score, weight: extra.Weight, reason: reason})
	}

	suggested, alternatives := suggestTags(txn)

	if contribMass == 0 {
		return model.ClassificationResult{
			ExpenseType:         model.ExpenseVariable,
			Confidence:          fallbackConfidence,
			SuggestedTag:        suggested,
			AlternativeTags:     alternatives,
			Explanation:         "no classification signal fired; defaulting to variable expense",
			ContributingFactors: allFactors,
			PrimaryReason:       model.ReasonFallback,
		}
	}

	norm := weightedSum / contribMass
	if norm > 1 {
		norm = 1
	} else if norm < -1 {
		norm = -1
	}

	expenseType := model.ExpenseVariable
	if weightedSum > 0 {
		expenseType = model.ExpenseFixed
	}

	// Agreement bonus: extra contributing extractors pointing the same way
	// raise confidence; a lone signal gets none.
	agree := 0
	var dominant contribution
	for _, c := range contribs {
		if (weightedSum > 0) == (c.score > 0) {
			agree++
		}
		if math.Abs(c.weight*c.score) > math.Abs(dominant.weight*dominant.score) {
			dominant = c
		}
	}
	bonus := 0.05 * float64(agree-1)
	if bonus < 0 {
		bonus = 0
	}

	confidence := baseConfidence + 0.6*math.Abs(norm) + bonus
	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	if confidence < minConfidence {
		confidence = minConfidence
	}

	return model.ClassificationResult{
		ExpenseType:         expenseType,
		Confidence:          confidence,
		SuggestedTag:        suggested,
		AlternativeTags:     alternatives,
		Explanation:         explain(expenseType, confidence, len(contribs), allFactors),
		ContributingFactors: allFactors,
		PrimaryReason:       dominant.reason,
	}
}

// suggestTags picks the best lexicon tag and up to maxAlternativeTags
// runners-up, independent of the expense-type decision.
func suggestTags(txn model.Transaction) (string, []string) {
	ranked := signal.SuggestTags(txn)
	if len(ranked) == 0 {
		return fallbackTag, nil
	}

	alternatives := make([]string, 0, maxAlternativeTags)
	for _, ts := range ranked[1:] {
		if len(alternatives) == maxAlternativeTags {
			break
		}
		alternatives = append(alternatives, ts.Tag)
	}
	return ranked[0].Tag, alternatives
}

func explain(expenseType model.ExpenseType, confidence float64, signals int, factors []string) string {
	label := "variable expense"
	if expenseType == model.ExpenseFixed {
		label = "fixed recurring expense"
	}
	explanation := fmt.Sprintf("classified as %s (confidence %.2f, %d signals)", label, confidence, signals)
	if len(factors) > 0 {
		explanation += ": " + strings.Join(factors, "; ")
	}
	return explanation
}
