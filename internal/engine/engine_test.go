package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/centime-app/centime/internal/feedback"
	"github.com/centime-app/centime/internal/model"
	"github.com/centime-app/centime/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryLog is an in-memory correction log for tests. Setting failErr makes
// every append fail.
type memoryLog struct {
	mu      sync.Mutex
	records []model.CorrectionRecord
	failErr error
}

func (l *memoryLog) AppendCorrection(_ context.Context, record *model.CorrectionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failErr != nil {
		return l.failErr
	}
	record.ID = int64(len(l.records) + 1)
	l.records = append(l.records, *record)
	return nil
}

func (l *memoryLog) ListCorrections(_ context.Context) ([]model.CorrectionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.CorrectionRecord, len(l.records))
	copy(out, l.records)
	return out, nil
}

// mockEnricher counts lookups and returns a canned hint or error.
type mockEnricher struct {
	mu    sync.Mutex
	hint  *service.EnrichmentHint
	err   error
	calls int
}

func (m *mockEnricher) Lookup(_ context.Context, _ string) (*service.EnrichmentHint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hint, nil
}

func (m *mockEnricher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestEngine() (*Engine, *memoryLog) {
	log := &memoryLog{}
	return New(feedback.NewStore(), log), log
}

func TestEngine_FeedbackPrecedence(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine()

	// Three identical corrections teach the merchant pattern.
	for i := 0; i < 3; i++ {
		err := e.RecordCorrection(ctx, model.Transaction{Name: "CB CHEZ PAUL", Amount: 24.50}, "restaurant", model.ExpenseVariable)
		require.NoError(t, err)
	}

	result := e.Classify(ctx, model.Transaction{Name: "CB CHEZ PAUL BISTROT", Amount: 31.00}, nil)

	assert.Equal(t, model.ReasonFeedbackExact, result.PrimaryReason)
	assert.Equal(t, "restaurant", result.SuggestedTag)
	assert.Equal(t, model.ExpenseVariable, result.ExpenseType)
	assert.GreaterOrEqual(t, result.Confidence, 0.8)
	assert.True(t, result.AutoApply)
}

func TestEngine_FeedbackOverridesEnsemble(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine()

	// The ensemble alone would call Netflix a fixed streaming charge; the
	// user insists otherwise, repeatedly.
	for i := 0; i < 5; i++ {
		require.NoError(t, e.RecordCorrection(ctx,
			model.Transaction{Name: "PRLV NETFLIX SARL", Amount: 9.99}, "shopping", model.ExpenseVariable))
	}

	result := e.Classify(ctx, model.Transaction{Name: "PRLV NETFLIX SARL", Amount: 9.99}, nil)

	assert.Equal(t, model.ReasonFeedbackExact, result.PrimaryReason)
	assert.Equal(t, "shopping", result.SuggestedTag)
	assert.Equal(t, model.ExpenseVariable, result.ExpenseType)
}

func TestEngine_PartialFeedbackMatch(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine()

	for i := 0; i < 4; i++ {
		require.NoError(t, e.RecordCorrection(ctx,
			model.Transaction{Name: "CB CHEZ PAUL", Amount: 18.00}, "restaurant", model.ExpenseVariable))
	}

	exact := e.Classify(ctx, model.Transaction{Name: "CB CHEZ PAUL", Amount: 18.00}, nil)
	require.Equal(t, model.ReasonFeedbackExact, exact.PrimaryReason)

	// A longer merchant key only partial-matches the learned one.
	partial := e.Classify(ctx, model.Transaction{MerchantName: "chez paul annexe lyon", Amount: 22.00}, nil)

	assert.Equal(t, model.ReasonFeedbackPartial, partial.PrimaryReason)
	assert.Equal(t, "restaurant", partial.SuggestedTag)
	assert.Less(t, partial.Confidence, exact.Confidence)
}

func TestEngine_CorrectionPenaltyAdjustsEnsemble(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine()

	baseline := e.Classify(ctx, model.Transaction{Name: "CB LECLERC PARIS", Amount: 52.30}, nil)
	require.Equal(t, "groceries", baseline.SuggestedTag)
	require.Equal(t, model.ExpenseVariable, baseline.ExpenseType)

	// The same (tag, type) output gets corrected twice on other merchants.
	require.NoError(t, e.RecordCorrection(ctx,
		model.Transaction{Name: "CB CARREFOUR CITY", Amount: 14.00}, "shopping", model.ExpenseVariable))
	require.NoError(t, e.RecordCorrection(ctx,
		model.Transaction{Name: "CB AUCHAN TOULOUSE", Amount: 61.00}, "shopping", model.ExpenseVariable))

	adjusted := e.Classify(ctx, model.Transaction{Name: "CB LECLERC PARIS", Amount: 52.30}, nil)

	assert.Equal(t, model.ReasonFeedbackAdjusted, adjusted.PrimaryReason)
	assert.Less(t, adjusted.Confidence, baseline.Confidence)
	require.NotEmpty(t, adjusted.AlternativeTags)
	assert.Equal(t, "shopping", adjusted.AlternativeTags[0])
}

func TestEngine_FallbackOnEmptyInput(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine()

	result := e.Classify(ctx, model.Transaction{}, nil)

	assert.Equal(t, model.ExpenseVariable, result.ExpenseType)
	assert.Equal(t, "divers", result.SuggestedTag)
	assert.InDelta(t, 0.3, result.Confidence, 0.001)
	assert.Equal(t, model.ReasonFallback, result.PrimaryReason)
	assert.False(t, result.AutoApply)
	assert.NotEmpty(t, result.Explanation)
}

func TestEngine_AutoApplyGate(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine()

	confident := e.Classify(ctx, model.Transaction{Name: "PRLV NETFLIX SARL", Amount: 9.99}, nil)
	require.GreaterOrEqual(t, confident.Confidence, AutoApplyThreshold)
	assert.True(t, confident.AutoApply)

	hesitant := e.Classify(ctx, model.Transaction{Name: "CB CARREFOUR", Amount: 42.00}, nil)
	require.Less(t, hesitant.Confidence, AutoApplyThreshold)
	assert.False(t, hesitant.AutoApply)
}

func TestEngine_EnrichmentConsultedOnlyBelowThreshold(t *testing.T) {
	ctx := context.Background()
	log := &memoryLog{}
	enricher := &mockEnricher{hint: &service.EnrichmentHint{
		Tag:         "groceries",
		ExpenseType: model.ExpenseVariable,
		Confidence:  0.7,
	}}
	e := NewWithConfig(feedback.NewStore(), log, Config{Enricher: enricher, BatchWorkers: 2})

	// High-confidence ensemble result: no enrichment call.
	e.Classify(ctx, model.Transaction{Name: "PRLV NETFLIX SARL", Amount: 9.99}, nil)
	assert.Equal(t, 0, enricher.callCount())

	// Hesitant result: enrichment consulted and folded in.
	base := e.Classify(ctx, model.Transaction{Name: "CB CARREFOUR", Amount: 42.00}, nil)
	assert.Equal(t, 1, enricher.callCount())
	assert.Equal(t, model.ExpenseVariable, base.ExpenseType)
}

func TestEngine_EnrichmentFailureDegradesGracefully(t *testing.T) {
	ctx := context.Background()
	log := &memoryLog{}
	enricher := &mockEnricher{err: errors.New("lookup service down")}
	e := NewWithConfig(feedback.NewStore(), log, Config{Enricher: enricher})

	result := e.Classify(ctx, model.Transaction{Name: "CB CARREFOUR", Amount: 42.00}, nil)

	assert.NotEmpty(t, result.ExpenseType)
	assert.Greater(t, result.Confidence, 0.0)
	assert.Greater(t, enricher.callCount(), 0)
}

func TestEngine_RecordCorrectionVisibleImmediately(t *testing.T) {
	ctx := context.Background()
	e, log := newTestEngine()

	require.NoError(t, e.RecordCorrection(ctx,
		model.Transaction{Name: "VIR SEPA GYMLIB", Amount: 29.90}, "sport", model.ExpenseFixed))

	result := e.Classify(ctx, model.Transaction{Name: "VIR SEPA GYMLIB", Amount: 29.90}, nil)
	assert.Equal(t, model.ReasonFeedbackExact, result.PrimaryReason)
	assert.Equal(t, "sport", result.SuggestedTag)

	records, err := log.ListCorrections(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "sport", records[0].CorrectedTag)
	assert.Equal(t, model.ExpenseFixed, records[0].CorrectedExpenseType)
	assert.NotEmpty(t, records[0].OriginalTag)
}

func TestEngine_RecordCorrectionFailedPersistNotApplied(t *testing.T) {
	ctx := context.Background()
	e, log := newTestEngine()
	log.failErr = errors.New("disk full")

	txn := model.Transaction{Name: "VIR SEPA GYMLIB", Amount: 29.90}
	err := e.RecordCorrection(ctx, txn, "sport", model.ExpenseFixed)
	require.Error(t, err)

	// The live projection must stay in step with the durable log.
	assert.Equal(t, 0, e.GetStatistics().TotalPatterns)
	result := e.Classify(ctx, txn, nil)
	assert.NotEqual(t, model.ReasonFeedbackExact, result.PrimaryReason)
}

func TestEngine_ReloadMatchesFreshBuild(t *testing.T) {
	ctx := context.Background()
	e, log := newTestEngine()

	corrections := []struct {
		label string
		tag   string
	}{
		{"CB CHEZ PAUL", "restaurant"},
		{"CB CHEZ PAUL", "restaurant"},
		{"PRLV NETFLIX SARL", "streaming"},
	}
	for _, c := range corrections {
		require.NoError(t, e.RecordCorrection(ctx,
			model.Transaction{Name: c.label, Amount: 10}, c.tag, model.ExpenseVariable))
	}

	fresh := New(feedback.NewStore(), log)
	require.NoError(t, fresh.ReloadPatterns(ctx))

	for _, label := range []string{"CB CHEZ PAUL", "PRLV NETFLIX SARL"} {
		txn := model.Transaction{Name: label, Amount: 10}
		live := e.Classify(ctx, txn, nil)
		rebuilt := fresh.Classify(ctx, txn, nil)
		assert.Equal(t, live.SuggestedTag, rebuilt.SuggestedTag, label)
		assert.Equal(t, live.ExpenseType, rebuilt.ExpenseType, label)
		assert.InDelta(t, live.Confidence, rebuilt.Confidence, 0.06, label)
	}

	assert.Equal(t, e.GetStatistics().TotalPatterns, fresh.GetStatistics().TotalPatterns)
}

func TestEngine_Deterministic(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine()

	txn := model.Transaction{
		Name:   "CB MCDONALDS PARIS",
		Amount: 8.50,
		Date:   time.Date(2024, time.April, 13, 15, 30, 0, 0, time.UTC),
	}
	first := e.Classify(ctx, txn, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Classify(ctx, txn, nil))
	}
}

func TestEngine_GetStatistics(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine()

	require.NoError(t, e.RecordCorrection(ctx,
		model.Transaction{Name: "PRLV NETFLIX SARL", Amount: 9.99}, "streaming", model.ExpenseFixed))

	stats := e.GetStatistics()
	assert.Equal(t, 1, stats.TotalPatterns)
	assert.Greater(t, stats.AverageConfidence, 0.0)
}
