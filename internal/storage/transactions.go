package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/centime-app/centime/internal/common"
	"github.com/centime-app/centime/internal/model"
	"github.com/centime-app/centime/internal/service"
)

// merchantHistoryLimit caps how many prior transactions the stability
// analyzer receives per merchant. Newest first would bias the interval
// heuristics, so the query keeps chronological order and trims the oldest.
const merchantHistoryLimit = 50

// SaveTransactions saves multiple transactions in a single database
// transaction. Duplicates (same hash) are silently skipped.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, hash, date, name, merchant_name, amount,
			account_id, category, transaction_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		if _, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.Hash,
			txn.Date,
			txn.Name,
			txn.MerchantName,
			txn.Amount,
			txn.AccountID,
			txn.Category,
			txn.Type,
		); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// GetTransactions retrieves transactions matching the filter, oldest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end %v before start %v", ErrInvalidDateRange, filter.EndDate, filter.StartDate)
	}

	query := `
		SELECT id, hash, date, name, merchant_name, amount,
		       account_id, category, transaction_type
		FROM transactions
		WHERE 1=1
	`
	args := []any{}

	if filter.StartDate != nil {
		query += " AND date >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND date <= ?"
		args = append(args, *filter.EndDate)
	}
	if filter.Merchant != "" {
		query += " AND merchant_name = ?"
		args = append(args, filter.Merchant)
	}

	query += " ORDER BY date ASC, id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// GetTransactionByID retrieves a single transaction by ID.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var txn model.Transaction
	var category, txType sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, hash, date, name, merchant_name, amount,
		       account_id, category, transaction_type
		FROM transactions
		WHERE id = ?
	`, id).Scan(
		&txn.ID,
		&txn.Hash,
		&txn.Date,
		&txn.Name,
		&txn.MerchantName,
		&txn.Amount,
		&txn.AccountID,
		&category,
		&txType,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	txn.Category = category.String
	txn.Type = txType.String
	return &txn, nil
}

// GetMerchantHistory returns prior transactions recorded for a normalized
// merchant key in chronological order, most recent window only.
func (s *SQLiteStorage) GetMerchantHistory(ctx context.Context, merchantKey string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if merchantKey == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hash, date, name, merchant_name, amount,
		       account_id, category, transaction_type
		FROM (
			SELECT * FROM transactions
			WHERE merchant_name = ?
			ORDER BY date DESC
			LIMIT ?
		)
		ORDER BY date ASC
	`, merchantKey, merchantHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchant history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// GetTransactionCount returns the total number of stored transactions.
func (s *SQLiteStorage) GetTransactionCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get transaction count: %w", err)
	}
	return count, nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var category, txType sql.NullString

		if err := rows.Scan(
			&txn.ID,
			&txn.Hash,
			&txn.Date,
			&txn.Name,
			&txn.MerchantName,
			&txn.Amount,
			&txn.AccountID,
			&category,
			&txType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		txn.Category = category.String
		txn.Type = txType.String
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}
