// Package feedback implements the learned side of the engine: an in-memory
// pattern index projected from the append-only correction log, plus the
// adaptive learner that maintains it.
//
// The index is published through an atomic pointer so lookups never block on
// writers; Reload builds a complete replacement and swaps it in, so readers
// see either the fully-old or the fully-new index, never a partial rebuild.
package feedback

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/centime-app/centime/internal/model"
	"github.com/centime-app/centime/internal/service"
)

// Partial substring matches are returned at a discount, and only when the
// discounted confidence still clears the floor.
const (
	partialMatchScale = 0.65
	matchFloor        = 0.5
	minPartialKeyLen  = 4
)

// Match is a successful pattern lookup.
type Match struct {
	Pattern model.FeedbackPattern
	Partial bool
}

// patternEntry is the mutable per-merchant state behind the index. Counter
// updates lock the entry, not the index.
type patternEntry struct {
	mu         sync.Mutex
	pattern    model.FeedbackPattern
	tagCounts  map[string]int
	typeCounts map[model.ExpenseType]int
}

// snapshot bundles both projections so a reload replaces them atomically.
type snapshot struct {
	patterns  map[string]*patternEntry
	penalties map[string]*penaltyEntry
}

// Store is the feedback pattern store. It is the only component in the
// engine with mutable state.
type Store struct {
	current atomic.Pointer[snapshot]
	mu      sync.Mutex // serializes writers (corrections, reload)
}

// NewStore creates an empty feedback pattern store.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&snapshot{
		patterns:  make(map[string]*patternEntry),
		penalties: make(map[string]*penaltyEntry),
	})
	return s
}

// Lookup finds a learned pattern for the merchant key. Exact hits win; when
// the exact lookup misses, substring containment in both directions against
// all known keys is attempted and the best-confidence containing match is
// returned scaled down. Returns nil on a miss.
func (s *Store) Lookup(merchantKey string) *Match {
	if merchantKey == "" {
		return nil
	}
	snap := s.current.Load()

	if entry, ok := snap.patterns[merchantKey]; ok {
		return &Match{Pattern: entry.snapshotPattern()}
	}

	// Partial match: very short keys match too much to be trusted.
	if len(merchantKey) < minPartialKeyLen {
		return nil
	}
	var best *model.FeedbackPattern
	for key, entry := range snap.patterns {
		if len(key) < minPartialKeyLen {
			continue
		}
		if !strings.Contains(merchantKey, key) && !strings.Contains(key, merchantKey) {
			continue
		}
		p := entry.snapshotPattern()
		// Equal-confidence candidates tie-break on merchant key so the
		// winner does not depend on map iteration order.
		switch {
		case best == nil,
			p.Confidence > best.Confidence,
			p.Confidence == best.Confidence && p.MerchantKey < best.MerchantKey:
			best = &p
		}
	}
	if best == nil {
		return nil
	}

	best.Confidence *= partialMatchScale
	if best.Confidence <= matchFloor {
		return nil
	}
	return &Match{Pattern: *best, Partial: true}
}

// RecordUsage increments the use count and refreshes last-used on every
// successful classification that relied on this pattern.
func (s *Store) RecordUsage(merchantKey string) {
	snap := s.current.Load()
	entry, ok := snap.patterns[merchantKey]
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.pattern.UseCount++
	entry.pattern.LastUsed = time.Now()
	entry.pattern.Confidence = patternConfidence(entry.pattern.UseCount, entry.pattern.SuccessRate)
}

// Reload fully rebuilds the index from the correction log and atomically
// publishes the replacement. Callable at any time without downtime.
func (s *Store) Reload(ctx context.Context, log service.CorrectionLog) error {
	records, err := log.ListCorrections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list corrections: %w", err)
	}

	fresh := &snapshot{
		patterns:  make(map[string]*patternEntry),
		penalties: make(map[string]*penaltyEntry),
	}
	for i := range records {
		applyCorrection(fresh, &records[i])
	}

	s.mu.Lock()
	s.current.Store(fresh)
	s.mu.Unlock()
	return nil
}

// RecordCorrection folds one user correction into the live projections.
// Persistence of the record itself belongs to the caller; this only updates
// the in-memory state.
func (s *Store) RecordCorrection(record *model.CorrectionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.current.Load()
	fresh := &snapshot{
		patterns:  make(map[string]*patternEntry, len(old.patterns)+1),
		penalties: make(map[string]*penaltyEntry, len(old.penalties)+1),
	}
	for k, v := range old.patterns {
		fresh.patterns[k] = v
	}
	for k, v := range old.penalties {
		fresh.penalties[k] = v
	}

	applyCorrection(fresh, record)
	s.current.Store(fresh)
}

// Stats summarizes the live projections for observability.
func (s *Store) Stats() model.LearningStats {
	snap := s.current.Load()

	stats := model.LearningStats{TotalPatterns: len(snap.patterns)}
	var confidenceSum float64
	for _, entry := range snap.patterns {
		p := entry.snapshotPattern()
		confidenceSum += p.Confidence
		if p.Confidence >= 0.8 {
			stats.HighConfidencePatterns++
		}
	}
	if stats.TotalPatterns > 0 {
		stats.AverageConfidence = confidenceSum / float64(stats.TotalPatterns)
	}
	for _, entry := range snap.penalties {
		if entry.total >= penaltyThreshold {
			stats.CorrectionPenaltyCount++
		}
	}
	return stats
}

// Patterns returns a point-in-time copy of all learned patterns, sorted by
// nothing in particular; callers sort for display.
func (s *Store) Patterns() []model.FeedbackPattern {
	snap := s.current.Load()
	patterns := make([]model.FeedbackPattern, 0, len(snap.patterns))
	for _, entry := range snap.patterns {
		patterns = append(patterns, entry.snapshotPattern())
	}
	return patterns
}

// snapshotPattern returns a consistent copy of the entry's pattern.
func (e *patternEntry) snapshotPattern() model.FeedbackPattern {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pattern
}
