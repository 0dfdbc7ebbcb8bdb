package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/centime-app/centime/internal/model"
	"github.com/centime-app/centime/internal/normalize"
	"github.com/centime-app/centime/internal/service"
)

// ClassifyBatch classifies independent transactions concurrently over a
// bounded worker pool and returns results keyed by transaction ID.
// Transactions have no ordering dependency between them; the worker bound
// mostly exists to respect enrichment rate limits.
func (e *Engine) ClassifyBatch(ctx context.Context, transactions []model.Transaction, histories service.HistoryProvider) map[string]model.ClassificationResult {
	results := make(map[string]model.ClassificationResult, len(transactions))
	if len(transactions) == 0 {
		return results
	}

	type outcome struct {
		id     string
		result model.ClassificationResult
	}

	jobs := make(chan model.Transaction)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for txn := range jobs {
				outcomes <- outcome{
					id:     transactionID(txn),
					result: e.classifyWithHistory(ctx, txn, histories),
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, txn := range transactions {
			select {
			case <-ctx.Done():
				return
			case jobs <- txn:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for o := range outcomes {
		results[o.id] = o.result
	}
	return results
}

// classifyWithHistory pre-fetches merchant history so the classification
// itself stays synchronous and free of blocking I/O.
func (e *Engine) classifyWithHistory(ctx context.Context, txn model.Transaction, histories service.HistoryProvider) model.ClassificationResult {
	var history []model.Transaction
	if histories != nil {
		key := txn.MerchantName
		if key == "" {
			key = normalize.Merchant(txn.Name)
		}
		if key != "" {
			var err error
			history, err = histories.GetMerchantHistory(ctx, key)
			if err != nil {
				slog.Warn("History lookup failed, classifying without history",
					"merchant", key,
					"error", err)
				history = nil
			}
		}
	}
	return e.Classify(ctx, txn, history)
}

func transactionID(txn model.Transaction) string {
	if txn.ID != "" {
		return txn.ID
	}
	return txn.GenerateHash()
}
