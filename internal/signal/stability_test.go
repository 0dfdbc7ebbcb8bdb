package signal

import (
	"testing"
	"time"

	"github.com/centime-app/centime/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monthlyHistory builds n transactions one month apart with the given amounts.
func monthlyHistory(amounts []float64) []model.Transaction {
	history := make([]model.Transaction, len(amounts))
	start := time.Date(2024, time.January, 5, 8, 0, 0, 0, time.UTC)
	for i, amount := range amounts {
		history[i] = model.Transaction{
			Amount: amount,
			Date:   start.AddDate(0, i, 0),
		}
	}
	return history
}

func TestStabilityExtractor_MonthlyRecurrence(t *testing.T) {
	e := NewStabilityExtractor()

	history := monthlyHistory([]float64{49.99, 49.99, 49.99, 49.99, 49.99, 49.99})
	result := e.Extract(model.Transaction{}, history)

	require.NotNil(t, result)
	assert.InDelta(t, 1.0, result.Score, 0.001)
	assert.Len(t, result.Factors, 2)
}

func TestStabilityExtractor_HighVariance(t *testing.T) {
	e := NewStabilityExtractor()

	history := []model.Transaction{
		{Amount: 12.40, Date: time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)},
		{Amount: 85.10, Date: time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)},
		{Amount: 31.75, Date: time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)},
		{Amount: 140.00, Date: time.Date(2024, time.March, 26, 0, 0, 0, 0, time.UTC)},
	}
	result := e.Extract(model.Transaction{}, history)

	require.NotNil(t, result)
	assert.Negative(t, result.Score)
}

func TestStabilityExtractor_AbstainsOnThinHistory(t *testing.T) {
	e := NewStabilityExtractor()

	assert.Nil(t, e.Extract(model.Transaction{}, nil))
	assert.Nil(t, e.Extract(model.Transaction{}, []model.Transaction{{Amount: 10}}))
}

func TestStabilityExtractor_StableAmountsIrregularDates(t *testing.T) {
	e := NewStabilityExtractor()

	history := []model.Transaction{
		{Amount: 20.00, Date: time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)},
		{Amount: 20.00, Date: time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC)},
		{Amount: 20.00, Date: time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)},
	}
	result := e.Extract(model.Transaction{}, history)

	require.NotNil(t, result)
	// Amount stability contributes, interval regularity does not.
	assert.InDelta(t, 0.6, result.Score, 0.001)
}
