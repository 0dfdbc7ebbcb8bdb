package main

import (
	"fmt"
	"os"
	"time"

	"github.com/centime-app/centime/internal/cli"
	"github.com/centime-app/centime/internal/model"
	"github.com/centime-app/centime/internal/service"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// classifyChunkSize bounds memory per progress tick, not concurrency; the
// engine's worker pool handles that.
const classifyChunkSize = 100

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify transactions as FIXED or VARIABLE expenses",
		Long: `Classify stored transactions, or a single ad-hoc label.

Examples:
  # Classify everything imported in January
  centime classify --from 2024-01-01 --to 2024-01-31

  # Classify one label without storing anything
  centime classify --label "PRLV NETFLIX SARL" --amount 9.99`,
		RunE: runClassify,
	}

	cmd.Flags().String("label", "", "classify a single raw transaction label")
	cmd.Flags().Float64("amount", 0, "amount for --label classification")
	cmd.Flags().String("date", "", "date for --label classification (YYYY-MM-DD)")
	cmd.Flags().String("from", "", "only classify transactions on or after this date")
	cmd.Flags().String("to", "", "only classify transactions on or before this date")
	cmd.Flags().String("merchant", "", "only classify transactions for this normalized merchant")
	cmd.Flags().Int("limit", 0, "classify at most N transactions")
	cmd.Flags().BoolP("explain", "e", false, "show contributing factors for each decision")

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	label, _ := cmd.Flags().GetString("label")
	explain, _ := cmd.Flags().GetBool("explain")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	eng, cleanup, err := initEngine(ctx, store)
	if err != nil {
		return err
	}
	defer cleanup()

	if label != "" {
		amount, _ := cmd.Flags().GetFloat64("amount")
		dateFlag, _ := cmd.Flags().GetString("date")

		txn := model.Transaction{Name: label, Amount: amount}
		if date, dateErr := parseDateFlag(dateFlag); dateErr != nil {
			return dateErr
		} else if date != nil {
			txn.Date = *date
		}

		result := eng.Classify(ctx, txn, nil)
		fmt.Print(cli.RenderClassification(label, result))
		if explain {
			fmt.Print(cli.RenderFactors(result))
		}
		return nil
	}

	filter, err := buildFilter(cmd)
	if err != nil {
		return err
	}

	transactions, err := store.GetTransactions(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	if len(transactions) == 0 {
		fmt.Println(cli.FormatWarning("No transactions matched; import some first."))
		return nil
	}

	bar := progressbar.NewOptions(len(transactions),
		progressbar.OptionSetDescription("Classifying"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	results := make(map[string]model.ClassificationResult, len(transactions))
	for start := 0; start < len(transactions); start += classifyChunkSize {
		end := start + classifyChunkSize
		if end > len(transactions) {
			end = len(transactions)
		}
		chunk := transactions[start:end]

		for id, result := range eng.ClassifyBatch(ctx, chunk, store) {
			results[id] = result
		}
		_ = bar.Add(len(chunk))

		if err := ctx.Err(); err != nil {
			return err
		}
	}
	_ = bar.Finish()

	autoApplied := 0
	for _, txn := range transactions {
		result, ok := results[txn.ID]
		if !ok {
			continue
		}
		fmt.Print(cli.RenderClassification(txn.Name, result))
		if explain {
			fmt.Print(cli.RenderFactors(result))
		}
		fmt.Println()
		if result.AutoApply {
			autoApplied++
		}
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Classified %d transactions, %d confident enough to auto-apply",
		len(results), autoApplied)))
	return nil
}

func buildFilter(cmd *cobra.Command) (service.TransactionFilter, error) {
	var filter service.TransactionFilter

	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")
	merchant, _ := cmd.Flags().GetString("merchant")
	limit, _ := cmd.Flags().GetInt("limit")

	from, err := parseDateFlag(fromFlag)
	if err != nil {
		return filter, err
	}
	to, err := parseDateFlag(toFlag)
	if err != nil {
		return filter, err
	}
	if to != nil {
		// Make --to inclusive of the whole day.
		end := to.Add(24*time.Hour - time.Second)
		to = &end
	}

	filter.StartDate = from
	filter.EndDate = to
	filter.Merchant = merchant
	filter.Limit = limit
	return filter, nil
}
