package storage

import (
	"context"
	"testing"
	"time"

	"github.com/centime-app/centime/internal/feedback"
	"github.com/centime-app/centime/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCorrection(label, correctedTag string) *model.CorrectionRecord {
	return &model.CorrectionRecord{
		Label:                label,
		OriginalTag:          "divers",
		OriginalExpenseType:  model.ExpenseVariable,
		CorrectedTag:         correctedTag,
		CorrectedExpenseType: model.ExpenseVariable,
		ConfidenceBefore:     0.3,
		CreatedAt:            time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteStorage_AppendCorrectionAssignsID(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	first := testCorrection("CB CHEZ PAUL", "restaurant")
	require.NoError(t, store.AppendCorrection(ctx, first))
	assert.Equal(t, int64(1), first.ID)

	second := testCorrection("PRLV NETFLIX SARL", "streaming")
	require.NoError(t, store.AppendCorrection(ctx, second))
	assert.Equal(t, int64(2), second.ID)
}

func TestSQLiteStorage_AppendCorrectionValidation(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	err := store.AppendCorrection(ctx, nil)
	assert.ErrorIs(t, err, ErrNilParameter)

	record := testCorrection("CB CHEZ PAUL", "")
	err = store.AppendCorrection(ctx, record)
	assert.ErrorIs(t, err, ErrInvalidCorrection)

	record = testCorrection("CB CHEZ PAUL", "restaurant")
	record.CorrectedExpenseType = "SOMETIMES"
	err = store.AppendCorrection(ctx, record)
	assert.ErrorIs(t, err, ErrInvalidCorrection)
}

func TestSQLiteStorage_ListCorrectionsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	labels := []string{"CB CHEZ PAUL", "PRLV NETFLIX SARL", "CB CARREFOUR CITY"}
	for _, label := range labels {
		require.NoError(t, store.AppendCorrection(ctx, testCorrection(label, "restaurant")))
	}

	records, err := store.ListCorrections(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, record := range records {
		assert.Equal(t, labels[i], record.Label)
		assert.Equal(t, int64(i+1), record.ID)
		assert.Equal(t, "divers", record.OriginalTag)
		assert.Equal(t, model.ExpenseVariable, record.CorrectedExpenseType)
	}
}

func TestSQLiteStorage_CorrectionLogReplaysIntoFeedbackStore(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendCorrection(ctx, testCorrection("CB CHEZ PAUL", "restaurant")))
	}

	patterns := feedback.NewStore()
	require.NoError(t, patterns.Reload(ctx, store))

	match := patterns.Lookup("chez paul")
	require.NotNil(t, match)
	assert.False(t, match.Partial)
	assert.Equal(t, "restaurant", match.Pattern.Tag)
	assert.Equal(t, 3, match.Pattern.UseCount)
}

func TestSQLiteStorage_GetCorrectionCount(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	count, err := store.GetCorrectionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, store.AppendCorrection(ctx, testCorrection("CB CHEZ PAUL", "restaurant")))
	count, err = store.GetCorrectionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
