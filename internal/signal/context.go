package signal

import (
	"fmt"
	"strings"

	"github.com/centime-app/centime/internal/model"
)

// ContextExtractor evaluates short contextual n-grams (2-3 token windows)
// against the phrase lexicon, catching phrase-level patterns that individual
// keywords miss or misread.
type ContextExtractor struct {
	phrases []phraseEntry
}

// NewContextExtractor creates a context extractor with the default phrases.
func NewContextExtractor() *ContextExtractor {
	return &ContextExtractor{phrases: phraseLexicon()}
}

// Name implements Extractor.
func (e *ContextExtractor) Name() string { return "context" }

// Extract implements Extractor.
func (e *ContextExtractor) Extract(txn model.Transaction, _ []model.Transaction) *model.SignalResult {
	text := searchText(txn)
	if text == "" {
		return nil
	}

	grams := ngrams(text)
	if len(grams) == 0 {
		return nil
	}

	var score float64
	var factors []string
	for _, entry := range e.phrases {
		if grams[entry.Phrase] {
			score += entry.Weight
			factors = append(factors, fmt.Sprintf("contextual phrase %q", entry.Phrase))
		}
	}

	if len(factors) == 0 {
		return nil
	}

	return &model.SignalResult{
		Score:   clampScore(score),
		Factors: factors,
	}
}

// ngrams returns the set of 2- and 3-token windows in the text.
func ngrams(text string) map[string]bool {
	tokens := strings.Fields(text)
	grams := make(map[string]bool)
	for i := 0; i < len(tokens)-1; i++ {
		grams[tokens[i]+" "+tokens[i+1]] = true
		if i < len(tokens)-2 {
			grams[tokens[i]+" "+tokens[i+1]+" "+tokens[i+2]] = true
		}
	}
	return grams
}
