// Package storage provides the SQLite persistence layer: imported
// transactions and the append-only correction log.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/centime-app/centime/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidCorrection  = errors.New("invalid correction")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidTransaction)
	}
	return nil
}

// validateCorrection validates a correction record before it is appended.
func validateCorrection(record *model.CorrectionRecord) error {
	if record == nil {
		return fmt.Errorf("%w: correction", ErrNilParameter)
	}
	if strings.TrimSpace(record.Label) == "" {
		return fmt.Errorf("%w: missing label", ErrInvalidCorrection)
	}
	if strings.TrimSpace(record.CorrectedTag) == "" {
		return fmt.Errorf("%w: missing corrected tag", ErrInvalidCorrection)
	}
	switch record.CorrectedExpenseType {
	case model.ExpenseFixed, model.ExpenseVariable:
	default:
		return fmt.Errorf("%w: invalid corrected expense type %q", ErrInvalidCorrection, record.CorrectedExpenseType)
	}
	if record.ConfidenceBefore < 0 || record.ConfidenceBefore > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidCorrection)
	}
	return nil
}
