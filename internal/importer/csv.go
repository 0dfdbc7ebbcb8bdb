// Package importer converts bank export files (CSV, OFX/QFX) into
// transactions ready for classification.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/centime-app/centime/internal/model"
	"github.com/centime-app/centime/internal/normalize"
)

// dateLayouts covers the date formats French bank CSV exports actually use.
var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"02/01/06",
}

// CSVImporter parses semicolon- or comma-separated bank exports with a
// header row. Column names are matched case-insensitively against common
// French and English export vocabularies.
type CSVImporter struct {
	AccountID string
}

// NewCSVImporter creates a CSV importer tagging rows with the given account.
func NewCSVImporter(accountID string) *CSVImporter {
	return &CSVImporter{AccountID: accountID}
}

// columnIndex locates header columns by any of their known aliases.
func columnIndex(header []string, aliases ...string) int {
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(col))
		for _, alias := range aliases {
			if col == alias {
				return i
			}
		}
	}
	return -1
}

// ParseFile parses a CSV export. Rows with an unparseable date or amount are
// reported as errors with their line number; empty lines are skipped.
func (imp *CSVImporter) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) == 1 && strings.Contains(header[0], ";") {
		// Semicolon-delimited export; reparse with the right separator.
		r.Comma = ';'
		header = strings.Split(header[0], ";")
	}

	dateCol := columnIndex(header, "date", "date operation", "date de l'operation", "transaction date")
	labelCol := columnIndex(header, "libelle", "label", "description", "intitule", "name")
	amountCol := columnIndex(header, "montant", "amount", "debit", "value")
	typeCol := columnIndex(header, "type", "type operation", "transaction type")

	if dateCol < 0 || labelCol < 0 || amountCol < 0 {
		return nil, fmt.Errorf("CSV header missing required columns (need date, label, amount): %v", header)
	}

	var transactions []model.Transaction
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		if isEmptyRecord(record) {
			continue
		}
		if len(record) <= dateCol || len(record) <= labelCol || len(record) <= amountCol {
			return nil, fmt.Errorf("CSV line %d has %d columns, expected at least %d", line, len(record), amountCol+1)
		}

		date, err := parseDate(record[dateCol])
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}

		amount, err := parseAmount(record[amountCol])
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}

		label := strings.TrimSpace(record[labelCol])
		txn := model.Transaction{
			Date:         date,
			Name:         label,
			MerchantName: normalize.Merchant(label),
			Amount:       amount,
			AccountID:    imp.AccountID,
		}
		if typeCol >= 0 && len(record) > typeCol {
			txn.Type = strings.ToUpper(strings.TrimSpace(record[typeCol]))
		}
		txn.Hash = txn.GenerateHash()
		txn.ID = txn.Hash

		transactions = append(transactions, txn)
	}

	return transactions, nil
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, s); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseAmount handles French decimal commas, thousand separators and
// non-breaking spaces. The sign is dropped: classification works on
// magnitudes.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimSuffix(s, "EUR")

	// "1.234,56" and "1234,56" both mean comma-decimal.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognized amount %q", s)
	}
	if amount < 0 {
		amount = -amount
	}
	return amount, nil
}
