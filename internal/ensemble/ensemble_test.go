package ensemble

import (
	"testing"
	"time"

	"github.com/centime-app/centime/internal/model"
	"github.com/centime-app/centime/internal/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsemble_SubscriptionLabelAndPrice(t *testing.T) {
	e := New()

	result := e.Classify(model.Transaction{
		Name:         "PRLV NETFLIX SARL",
		MerchantName: "netflix",
		Amount:       9.99,
	}, nil)

	assert.Equal(t, model.ExpenseFixed, result.ExpenseType)
	assert.GreaterOrEqual(t, result.Confidence, 0.6)
	assert.Equal(t, "streaming", result.SuggestedTag)
	assert.Equal(t, model.ReasonKeyword, result.PrimaryReason)
	assert.NotEmpty(t, result.ContributingFactors)
	assert.NotEmpty(t, result.Explanation)
}

func TestEnsemble_WeekendFastFood(t *testing.T) {
	e := New()

	// 2024-04-13 is a Saturday.
	result := e.Classify(model.Transaction{
		Name:         "CB MCDONALDS PARIS",
		MerchantName: "mcdonalds paris",
		Amount:       8.50,
		Date:         time.Date(2024, time.April, 13, 15, 30, 0, 0, time.UTC),
	}, nil)

	assert.Equal(t, model.ExpenseVariable, result.ExpenseType)
	assert.GreaterOrEqual(t, result.Confidence, 0.5)
	assert.LessOrEqual(t, result.Confidence, 0.9)
	assert.Equal(t, "restaurant", result.SuggestedTag)
}

func TestEnsemble_StabilityDominates(t *testing.T) {
	e := New()

	history := make([]model.Transaction, 6)
	start := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	for i := range history {
		history[i] = model.Transaction{Amount: 49.99, Date: start.AddDate(0, i, 0)}
	}

	result := e.Classify(model.Transaction{
		Name:         "ZENPARK CLUB",
		MerchantName: "zenpark club",
		Amount:       49.99,
	}, history)

	assert.Equal(t, model.ExpenseFixed, result.ExpenseType)
	assert.GreaterOrEqual(t, result.Confidence, 0.85)
}

func TestEnsemble_NoSignalDefaultsToVariable(t *testing.T) {
	e := New()

	result := e.Classify(model.Transaction{
		Name:         "ZZXQ",
		MerchantName: "",
		Amount:       0,
	}, nil)

	assert.Equal(t, model.ExpenseVariable, result.ExpenseType)
	assert.Equal(t, fallbackConfidence, result.Confidence)
	assert.LessOrEqual(t, result.Confidence, 0.6)
	assert.Equal(t, fallbackTag, result.SuggestedTag)
	assert.Equal(t, model.ReasonFallback, result.PrimaryReason)
	assert.NotEmpty(t, result.Explanation)
}

func TestEnsemble_ConfidenceBounds(t *testing.T) {
	e := New()

	transactions := []model.Transaction{
		{Name: "PRLV ABONNEMENT NETFLIX SPOTIFY EDF LOYER ASSURANCE", Amount: 9.99, Date: time.Date(2024, time.February, 2, 3, 0, 0, 0, time.UTC)},
		{Name: "CB MCDONALDS KFC BURGER KING BAR CINEMA", Amount: 5.50, Date: time.Date(2024, time.April, 14, 16, 0, 0, 0, time.UTC)},
		{Name: "CB CARREFOUR", Amount: 42.00},
		{Name: "", Amount: 0},
	}

	for _, txn := range transactions {
		result := e.Classify(txn, nil)
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, maxConfidence)
		assert.NotEmpty(t, result.ExpenseType)
	}
}

func TestEnsemble_Deterministic(t *testing.T) {
	e := New()
	txn := model.Transaction{
		Name:         "PRLV NETFLIX SARL",
		MerchantName: "netflix",
		Amount:       9.99,
		Date:         time.Date(2024, time.March, 3, 4, 12, 0, 0, time.UTC),
	}

	first := e.Classify(txn, nil)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, e.Classify(txn, nil))
	}
}

func TestEnsemble_ExtraSignalShiftsDecision(t *testing.T) {
	e := New()
	txn := model.Transaction{Name: "CB CARREFOUR MARKET", MerchantName: "carrefour market", Amount: 42.00}

	base := e.Classify(txn, nil)
	require.Equal(t, model.ExpenseVariable, base.ExpenseType)

	boosted := e.Classify(txn, nil, ExtraSignal{
		Name:   "enrichment",
		Weight: 0.15,
		Result: model.SignalResult{Score: -0.9, Factors: []string{"external lookup: retail"}},
	})

	assert.Equal(t, model.ExpenseVariable, boosted.ExpenseType)
	assert.Greater(t, boosted.Confidence, base.Confidence)
	assert.Contains(t, boosted.ContributingFactors, "external lookup: retail")
}

// stubExtractor always fires with a fixed score, under any name.
type stubExtractor struct {
	name  string
	score float64
}

func (s stubExtractor) Name() string { return s.name }

func (s stubExtractor) Extract(model.Transaction, []model.Transaction) *model.SignalResult {
	return &model.SignalResult{Score: s.score, Factors: []string{s.name + " fired"}}
}

func TestEnsemble_DominantExtraSignalKeepsDefinedReason(t *testing.T) {
	// A 0.15-weight extra outweighs a lone temporal signal (0.10); the
	// primary reason must still be a defined enum value.
	e := NewWithExtractors([]signal.Extractor{stubExtractor{name: "temporal", score: 0.4}})

	result := e.Classify(model.Transaction{MerchantName: "obscure merchant"}, nil, ExtraSignal{
		Name:   "enrichment",
		Weight: 0.15,
		Result: model.SignalResult{Score: 0.9, Factors: []string{"external lookup: subscription"}},
		Reason: model.ReasonEnrichment,
	})

	assert.Equal(t, model.ReasonEnrichment, result.PrimaryReason)
	assert.Equal(t, model.ExpenseFixed, result.ExpenseType)

	// An unnamed extra still resolves to the enrichment reason.
	bare := e.Classify(model.Transaction{MerchantName: "obscure merchant"}, nil, ExtraSignal{
		Name:   "enrichment",
		Weight: 0.15,
		Result: model.SignalResult{Score: 0.9},
	})
	assert.Equal(t, model.ReasonEnrichment, bare.PrimaryReason)
}

func TestEnsemble_AlternativeTagsBounded(t *testing.T) {
	e := New()

	result := e.Classify(model.Transaction{
		Name:   "CB MCDONALDS CARREFOUR FNAC CINEMA BAR TAXI SNCF UBER ZARA IKEA",
		Amount: 25.00,
	}, nil)

	assert.LessOrEqual(t, len(result.AlternativeTags), maxAlternativeTags)
	assert.NotEqual(t, "", result.SuggestedTag)
}
