// Package service defines the interfaces at the engine's collaborator
// boundaries: persistence, history lookup and optional enrichment.
package service

import (
	"context"
	"time"

	"github.com/centime-app/centime/internal/model"
)

// CorrectionLog is the append-only correction history owned by the
// persistence layer. The engine replays it to rebuild the feedback pattern
// store and appends one record per user correction.
type CorrectionLog interface {
	// AppendCorrection durably appends one correction record.
	AppendCorrection(ctx context.Context, record *model.CorrectionRecord) error
	// ListCorrections returns all correction records in insertion order.
	ListCorrections(ctx context.Context) ([]model.CorrectionRecord, error)
}

// HistoryProvider returns prior transactions for a normalized merchant key,
// used by the stability/frequency analyzer. An empty history is valid.
type HistoryProvider interface {
	GetMerchantHistory(ctx context.Context, merchantKey string) ([]model.Transaction, error)
}

// EnrichmentHint is the result of a best-effort external merchant lookup.
type EnrichmentHint struct {
	Tag         string
	ExpenseType model.ExpenseType
	Confidence  float64
}

// Enricher is the optional external merchant classifier. Absence or failure
// of this collaborator degrades confidence, never raises an error to the
// engine's callers.
type Enricher interface {
	Lookup(ctx context.Context, merchantKey string) (*EnrichmentHint, error)
}

// Storage is the full persistence contract consumed by the CLI: imported
// transactions plus the correction log.
type Storage interface {
	CorrectionLog
	HistoryProvider

	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)

	Migrate(ctx context.Context) error
	Close() error
}

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Merchant  string
	Limit     int
	Offset    int
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
