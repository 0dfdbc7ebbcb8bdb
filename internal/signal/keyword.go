package signal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/centime-app/centime/internal/model"
)

// KeywordExtractor scans the transaction label against the fixed and
// variable expense lexicons, weighting each hit by keyword specificity.
type KeywordExtractor struct {
	fixed    []keywordEntry
	variable []keywordEntry
}

// NewKeywordExtractor creates a keyword extractor with the default lexicons.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{
		fixed:    fixedLexicon(),
		variable: variableLexicon(),
	}
}

// Name implements Extractor.
func (e *KeywordExtractor) Name() string { return "keyword" }

// Extract implements Extractor. Score is the sum of fixed-lexicon hit
// weights minus the sum of variable-lexicon hit weights, clamped to [-1, 1].
func (e *KeywordExtractor) Extract(txn model.Transaction, _ []model.Transaction) *model.SignalResult {
	text := searchText(txn)
	if text == "" {
		return nil
	}

	var score float64
	var factors []string

	for _, entry := range e.fixed {
		if strings.Contains(text, entry.Term) {
			score += entry.Weight
			factors = append(factors, fmt.Sprintf("fixed-expense keyword %q", entry.Term))
		}
	}
	for _, entry := range e.variable {
		if strings.Contains(text, entry.Term) {
			score -= entry.Weight
			factors = append(factors, fmt.Sprintf("variable-expense keyword %q", entry.Term))
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

// TagScore ranks a semantic tag by accumulated keyword evidence.
type TagScore struct {
	Tag   string
	Score float64
}

// SuggestTags maps lexicon hits to semantic tags, independent of the
// FIXED/VARIABLE decision: a transaction can carry a high-confidence
// "restaurant" tag even when its expense type is uncertain.
func SuggestTags(txn model.Transaction) []TagScore {
	text := searchText(txn)
	if text == "" {
		return nil
	}

	scores := make(map[string]float64)
	for _, entry := range fixedLexicon() {
		if entry.Tag != "" && strings.Contains(text, entry.Term) {
			scores[entry.Tag] += entry.Weight
		}
	}
	for _, entry := range variableLexicon() {
		if entry.Tag != "" && strings.Contains(text, entry.Term) {
			scores[entry.Tag] += entry.Weight
		}
	}
	for _, entry := range phraseLexicon() {
		if entry.Tag != "" && strings.Contains(text, entry.Phrase) {
			weight := entry.Weight
			if weight < 0 {
				weight = -weight
			}
			scores[entry.Tag] += weight
		}
	}

	ranked := make([]TagScore, 0, len(scores))
	for tag, score := range scores {
		ranked = append(ranked, TagScore{Tag: tag, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Tag < ranked[j].Tag
	})
	return ranked
}

// searchText builds the lowercase haystack scanned by the lexicons.
func searchText(txn model.Transaction) string {
	return strings.TrimSpace(strings.ToLower(txn.Name + " " + txn.MerchantName))
}
