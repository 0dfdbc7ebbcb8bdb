package normalize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerchant(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{
			name:  "card payment with city",
			label: "CB MCDONALDS PARIS",
			want:  "mcdonalds paris",
		},
		{
			name:  "direct debit with legal suffix",
			label: "PRLV NETFLIX SARL",
			want:  "netflix",
		},
		{
			name:  "keeps two tokens when first is long enough",
			label: "CB CHEZ PAUL BISTROT",
			want:  "chez paul",
		},
		{
			name:  "strips date token",
			label: "CB CARREFOUR 12/03 PARIS",
			want:  "carrefour paris",
		},
		{
			name:  "strips full date and time",
			label: "PAIEMENT CB 15/04/2024 AUCHAN 18h32",
			want:  "auchan",
		},
		{
			name:  "strips long reference numbers",
			label: "VIR SEPA EDF CLIENTS 1234567890",
			want:  "edf clients",
		},
		{
			name:  "collapses punctuation runs",
			label: "SPOTIFY***ABONNEMENT",
			want:  "spotify abonnement",
		},
		{
			name:  "empty input",
			label: "",
			want:  "",
		},
		{
			name:  "fully numeric input",
			label: "123456 789",
			want:  "",
		},
		{
			name:  "whitespace only",
			label: "   ",
			want:  "",
		},
		{
			name:  "short tokens are skipped",
			label: "CB LE PETIT CAFE",
			want:  "petit cafe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merchant(tt.label))
		})
	}
}

func TestMerchant_Deterministic(t *testing.T) {
	label := "CB  CHEZ PAUL  BISTROT 12/03"
	first := Merchant(label)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Merchant(label))
	}
}

func TestMerchant_Idempotent(t *testing.T) {
	labels := []string{
		"CB MCDONALDS PARIS",
		"PRLV NETFLIX SARL",
		"VIR SEPA EDF CLIENTS",
		"SPOTIFY***ABONNEMENT",
		"chez paul",
		"",
	}

	for _, label := range labels {
		key := Merchant(label)
		assert.Equal(t, key, Merchant(key), "normalize must be idempotent for %q", label)
	}
}

func TestMerchant_Truncation(t *testing.T) {
	key := Merchant("ETABLISSEMENTS EXTRAORDINAIREMENT INTERMINABLES INTERNATIONAUX")
	assert.LessOrEqual(t, len(key), maxKeyLength)
	assert.NotEmpty(t, key)
}

func TestMerchant_TruncationKeepsRuneBoundaries(t *testing.T) {
	// A single accented token longer than the cap must not be cut inside a
	// UTF-8 sequence, and the truncated key must normalize to itself.
	key := Merchant(strings.Repeat("aé", 30))
	require.NotEmpty(t, key)
	assert.True(t, utf8.ValidString(key))
	assert.LessOrEqual(t, len(key), maxKeyLength)
	assert.Equal(t, key, Merchant(key))
}

func TestMerchant_TruncationDropsTrailingFragment(t *testing.T) {
	// Cutting mid-token can leave a fragment too short to survive another
	// normalization pass; the fragment is dropped instead.
	long := strings.Repeat("x", 47)
	key := Merchant(long + " PARIS")
	assert.Equal(t, long, key)
	assert.Equal(t, key, Merchant(key))
}

func TestMerchant_IdempotentMultibyte(t *testing.T) {
	labels := []string{
		"CB CRÈMERIE DU MARCHÉ",
		"PRLV SOCIÉTÉ GÉNÉRALE",
		strings.Repeat("aé", 30),
		strings.Repeat("héllo ", 12),
	}

	for _, label := range labels {
		key := Merchant(label)
		assert.True(t, utf8.ValidString(key), "key for %q must be valid UTF-8", label)
		assert.Equal(t, key, Merchant(key), "normalize must be idempotent for %q", label)
	}
}
