package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/centime-app/centime/internal/model"
)

// AppendCorrection durably appends one correction record and fills in its
// assigned ID. Records are never updated or deleted; the feedback store is
// rebuilt by replaying them in insertion order.
func (s *SQLiteStorage) AppendCorrection(ctx context.Context, record *model.CorrectionRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCorrection(record); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO corrections (
			label, original_tag, original_expense_type,
			corrected_tag, corrected_expense_type,
			confidence_before, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		record.Label,
		record.OriginalTag,
		string(record.OriginalExpenseType),
		record.CorrectedTag,
		string(record.CorrectedExpenseType),
		record.ConfidenceBefore,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append correction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get correction id: %w", err)
	}
	record.ID = id
	return nil
}

// ListCorrections returns all correction records in insertion order.
func (s *SQLiteStorage) ListCorrections(ctx context.Context) ([]model.CorrectionRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, original_tag, original_expense_type,
		       corrected_tag, corrected_expense_type,
		       confidence_before, created_at
		FROM corrections
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.CorrectionRecord
	for rows.Next() {
		var record model.CorrectionRecord
		var originalTag, originalType sql.NullString

		if err := rows.Scan(
			&record.ID,
			&record.Label,
			&originalTag,
			&originalType,
			&record.CorrectedTag,
			&record.CorrectedExpenseType,
			&record.ConfidenceBefore,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}

		record.OriginalTag = originalTag.String
		record.OriginalExpenseType = model.ExpenseType(originalType.String)
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetCorrectionCount returns the total number of recorded corrections.
func (s *SQLiteStorage) GetCorrectionCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM corrections`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get correction count: %w", err)
	}
	return count, nil
}
