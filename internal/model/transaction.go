package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction represents a single financial transaction from any source.
// The classification engine treats it as read-only input.
type Transaction struct {
	Date         time.Time
	ID           string
	Name         string // Raw transaction label as exported by the bank
	MerchantName string // Normalized merchant key (see internal/normalize)
	AccountID    string
	Hash         string
	Amount       float64

	// Optional metadata that may be available depending on source
	Category string // Prior tag hint from the source, if any
	Type     string // Payment rail hint (e.g. CARD, DIRECT_DEBIT, TRANSFER)
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Name,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
