// Package normalize derives canonical merchant keys from raw bank labels.
// The key is the join point for every pattern lookup in the engine, so the
// derivation must be deterministic: same label in, same key out, always.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxKeyLength = 50

// Payment-rail markers and legal-form suffixes carry no merchant identity
// and are skipped wherever they appear in the label.
var noiseWords = map[string]bool{
	"cb":          true,
	"prlv":        true,
	"prelevement": true,
	"vir":         true,
	"virement":    true,
	"paiement":    true,
	"retrait":     true,
	"achat":       true,
	"carte":       true,
	"cheque":      true,
	"sepa":        true,
	"tpe":         true,
	"web":         true,
	"fact":        true,
	"echeance":    true,
	"sarl":        true,
	"sas":         true,
	"eurl":        true,
	"gmbh":        true,
	"ltd":         true,
	"inc":         true,
	"llc":         true,
}

var (
	datePattern = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(/\d{2,4})?\b`)
	timePattern = regexp.MustCompile(`\b\d{1,2}[hH]\d{2}\b`)
	refPattern  = regexp.MustCompile(`\b[A-Za-z]*\d{5,}[A-Za-z0-9]*\b`)
	punctRuns   = regexp.MustCompile(`[*#._\-:,;!?'"()\[\]]+`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// Merchant turns a raw transaction label into a canonical lowercase merchant
// key. Empty or fully-numeric input yields an empty string; callers must
// treat an empty key as unmatchable. Pure function, no failure modes.
func Merchant(label string) string {
	s := strings.ToUpper(strings.TrimSpace(label))
	if s == "" {
		return ""
	}

	s = datePattern.ReplaceAllString(s, " ")
	s = timePattern.ReplaceAllString(s, " ")
	s = refPattern.ReplaceAllString(s, " ")
	s = punctRuns.ReplaceAllString(s, " ")
	s = spaceRuns.ReplaceAllString(s, " ")

	tokens := meaningfulTokens(s)
	if len(tokens) == 0 {
		return ""
	}

	key := strings.Join(tokens, " ")
	if len(key) > maxKeyLength {
		key = truncateKey(key)
	}
	return key
}

// truncateKey caps a key at maxKeyLength bytes without splitting a UTF-8
// sequence, then drops any trailing token fragment too short to survive
// another pass through Merchant.
func truncateKey(key string) string {
	cut := maxKeyLength
	for cut > 0 && !utf8.RuneStart(key[cut]) {
		cut--
	}
	key = strings.TrimRight(key[:cut], " ")
	if i := strings.LastIndexByte(key, ' '); i >= 0 && len(key)-i-1 < 3 {
		key = key[:i]
	}
	return key
}

// meaningfulTokens selects the leading merchant-identity tokens: the first
// two alphabetic tokens of length >= 3, plus a third only when the first two
// are both too short to identify a merchant on their own.
func meaningfulTokens(s string) []string {
	var tokens []string
	for _, tok := range strings.Fields(s) {
		if !isAlphabetic(tok) || len(tok) < 3 {
			continue
		}
		lower := strings.ToLower(tok)
		if noiseWords[lower] {
			continue
		}
		tokens = append(tokens, lower)
		if len(tokens) == 2 && (len(tokens[0]) > 3 || len(tokens[1]) > 3) {
			break
		}
		if len(tokens) == 3 {
			break
		}
	}
	return tokens
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(s) > 0
}
