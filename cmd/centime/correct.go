package main

import (
	"fmt"
	"strings"

	"github.com/centime-app/centime/internal/cli"
	"github.com/centime-app/centime/internal/model"
	"github.com/spf13/cobra"
)

func correctCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct <transaction-id> <tag> <FIXED|VARIABLE>",
		Short: "Correct a classification and teach the engine",
		Long: `Record that the engine's suggestion for a transaction was wrong. The
correction is appended to the durable log and applied immediately: the next
classification of the same merchant uses what you taught it.

Examples:
  centime correct a1b2c3 restaurant VARIABLE
  centime correct --label "PRLV NETFLIX SARL" streaming FIXED`,
		Args: correctArgs,
		RunE: runCorrect,
	}

	cmd.Flags().String("label", "", "correct by raw label instead of stored transaction ID")

	return cmd
}

func correctArgs(cmd *cobra.Command, args []string) error {
	label, _ := cmd.Flags().GetString("label")
	want := 3
	if label != "" {
		want = 2
	}
	if len(args) != want {
		return fmt.Errorf("expected %d arguments, got %d", want, len(args))
	}
	return nil
}

func parseExpenseTypeArg(arg string) (model.ExpenseType, error) {
	switch strings.ToUpper(arg) {
	case string(model.ExpenseFixed):
		return model.ExpenseFixed, nil
	case string(model.ExpenseVariable):
		return model.ExpenseVariable, nil
	default:
		return "", fmt.Errorf("expense type must be FIXED or VARIABLE, got %q", arg)
	}
}

func runCorrect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	label, _ := cmd.Flags().GetString("label")

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

	var txn model.Transaction
	var tag string
	var expenseType model.ExpenseType

	if label != "" {
		txn = model.Transaction{Name: label}
		tag = args[0]
		expenseType, err = parseExpenseTypeArg(args[1])
	} else {
		stored, lookupErr := store.GetTransactionByID(ctx, args[0])
		if lookupErr != nil {
			return fmt.Errorf("transaction %s: %w", args[0], lookupErr)
		}
		txn = *stored
		tag = args[1]
		expenseType, err = parseExpenseTypeArg(args[2])
	}
	if err != nil {
		return err
	}

	if err := eng.RecordCorrection(ctx, txn, tag, expenseType); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded: %q is %s (%s)", txn.Name, tag, expenseType)))

	// Show what the engine now says for this merchant.
	after := eng.Classify(ctx, txn, nil)
	fmt.Print(cli.RenderClassification(txn.Name, after))
	return nil
}
