package main

import (
	"fmt"
	"os"

	"github.com/centime-app/centime/internal/cli"
	"github.com/centime-app/centime/internal/importer"
	"github.com/centime-app/centime/internal/model"
	"github.com/spf13/cobra"
)

func importCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from CSV bank exports",
		Long: `Import transactions from CSV files exported by your bank. Both
semicolon- and comma-delimited exports are recognized, with French or
English column names.

Examples:
  centime import ~/Downloads/export_janvier.csv
  centime import --account livret exports/*.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportCSV,
	}

	cmd.Flags().String("account", "main", "account ID to tag imported transactions with")
	cmd.Flags().BoolP("dry-run", "d", false, "preview import without saving")

	return cmd
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	accountID, _ := cmd.Flags().GetString("account")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	imp := importer.NewCSVImporter(accountID)

	var all []model.Transaction
	for _, path := range args {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}

		txns, err := imp.ParseFile(ctx, file)
		_ = file.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		all = append(all, txns...)
	}

	return saveImported(cmd, all, dryRun)
}

// saveImported persists parsed transactions unless this is a dry run.
// Shared by the CSV and OFX import commands.
func saveImported(cmd *cobra.Command, transactions []model.Transaction, dryRun bool) error {
	if len(transactions) == 0 {
		fmt.Println(cli.FormatWarning("No transactions found in the given files."))
		return nil
	}

	if dryRun {
		for _, txn := range transactions {
			fmt.Printf("%s  %-40s  %10.2f  %s\n",
				txn.Date.Format("2006-01-02"), txn.Name, txn.Amount, txn.MerchantName)
		}
		fmt.Println(cli.FormatWarning(fmt.Sprintf("Dry run: %d transactions not saved", len(transactions))))
		return nil
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveTransactions(ctx, transactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d transactions", len(transactions))))
	return nil
}
