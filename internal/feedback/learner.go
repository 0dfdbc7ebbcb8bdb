package feedback

import (
	"fmt"
	"math"

	"github.com/centime-app/centime/internal/model"
	"github.com/centime-app/centime/internal/normalize"
)

// A given ensemble output must be corrected at least this often before the
// engine starts penalizing it globally: a single correction is not a trend.
const penaltyThreshold = 2

// maxPatternConfidence keeps learned patterns saturating well short of
// certainty no matter how often they are confirmed.
const maxPatternConfidence = 0.98

// patternConfidence is the saturating trust formula for a learned pattern:
// more corrections and higher historical success both increase trust.
func patternConfidence(useCount int, successRate float64) float64 {
	return math.Min(maxPatternConfidence, 0.6+0.05*float64(useCount)+0.2*successRate)
}

// penaltyEntry tracks how often a specific (tag, expense type) ensemble
// output has been corrected, and to what. It is a second, smaller projection
// over the same correction log as the pattern index.
type penaltyEntry struct {
	corrections map[string]int
	total       int
}

// Penalty is a learned "this predicted label is often wrong" adjustment.
type Penalty struct {
	CommonTag         string
	CommonExpenseType model.ExpenseType
	Amount            float64
}

// PenaltyFor returns the confidence penalty for an ensemble output that has
// historically been corrected, along with the most common correction to
// surface as an alternative. Returns nil when the output has not recurred as
// a mistake.
func (s *Store) PenaltyFor(tag string, expenseType model.ExpenseType) *Penalty {
	snap := s.current.Load()
	entry, ok := snap.penalties[penaltyKey(tag, expenseType)]
	if !ok || entry.total < penaltyThreshold {
		return nil
	}

	var commonKey string
	var commonCount int
	for key, count := range entry.corrections {
		if count > commonCount || (count == commonCount && key < commonKey) {
			commonKey, commonCount = key, count
		}
	}
	commonTag, commonType := splitCorrectionKey(commonKey)

	return &Penalty{
		Amount:            math.Min(0.4, 0.1*float64(entry.total)),
		CommonTag:         commonTag,
		CommonExpenseType: commonType,
	}
}

// applyCorrection folds one correction record into a snapshot: it upserts
// the merchant pattern and updates the correction-frequency projection.
// Callers hold the writer lock or own the snapshot exclusively.
func applyCorrection(snap *snapshot, record *model.CorrectionRecord) {
	key := normalize.Merchant(record.Label)
	if key == "" {
		return
	}

	entry, ok := snap.patterns[key]
	if !ok {
		entry = &patternEntry{
			pattern: model.FeedbackPattern{
				MerchantKey: key,
				LastUsed:    record.CreatedAt,
			},
			tagCounts:  make(map[string]int),
			typeCounts: make(map[model.ExpenseType]int),
		}
		snap.patterns[key] = entry
	}

	entry.mu.Lock()
	entry.tagCounts[record.CorrectedTag]++
	entry.typeCounts[record.CorrectedExpenseType]++
	entry.pattern.UseCount++
	entry.pattern.Tag, entry.pattern.SuccessRate = dominantTag(entry.tagCounts, entry.pattern.UseCount)
	entry.pattern.ExpenseType = dominantType(entry.typeCounts)
	entry.pattern.Confidence = patternConfidence(entry.pattern.UseCount, entry.pattern.SuccessRate)
	if record.CreatedAt.After(entry.pattern.LastUsed) {
		entry.pattern.LastUsed = record.CreatedAt
	}
	entry.mu.Unlock()

	// The penalty projection only cares about corrections that actually
	// changed something the ensemble said.
	if record.OriginalTag == "" && record.OriginalExpenseType == "" {
		return
	}
	if record.OriginalTag == record.CorrectedTag && record.OriginalExpenseType == record.CorrectedExpenseType {
		return
	}
	pk := penaltyKey(record.OriginalTag, record.OriginalExpenseType)
	pEntry, ok := snap.penalties[pk]
	if !ok {
		pEntry = &penaltyEntry{corrections: make(map[string]int)}
		snap.penalties[pk] = pEntry
	} else {
		// Copy-on-write: the entry may be shared with a published snapshot.
		clone := &penaltyEntry{
			corrections: make(map[string]int, len(pEntry.corrections)),
			total:       pEntry.total,
		}
		for k, v := range pEntry.corrections {
			clone.corrections[k] = v
		}
		pEntry = clone
		snap.penalties[pk] = pEntry
	}
	pEntry.total++
	pEntry.corrections[correctionKey(record.CorrectedTag, record.CorrectedExpenseType)]++
}

// dominantTag returns the most frequently corrected-to tag and the share of
// corrections agreeing with it (the pattern's success rate).
func dominantTag(counts map[string]int, total int) (string, float64) {
	var tag string
	var count int
	for t, c := range counts {
		if c > count || (c == count && t < tag) {
			tag, count = t, c
		}
	}
	if total == 0 {
		return tag, 0
	}
	return tag, float64(count) / float64(total)
}

func dominantType(counts map[model.ExpenseType]int) model.ExpenseType {
	if counts[model.ExpenseFixed] > counts[model.ExpenseVariable] {
		return model.ExpenseFixed
	}
	return model.ExpenseVariable
}

func penaltyKey(tag string, expenseType model.ExpenseType) string {
	return fmt.Sprintf("%s|%s", tag, expenseType)
}

func correctionKey(tag string, expenseType model.ExpenseType) string {
	return penaltyKey(tag, expenseType)
}

func splitCorrectionKey(key string) (string, model.ExpenseType) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '|' {
			return key[:i], model.ExpenseType(key[i+1:])
		}
	}
	return key, ""
}
