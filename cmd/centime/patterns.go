package main

import (
	"fmt"

	"github.com/centime-app/centime/internal/cli"
	"github.com/centime-app/centime/internal/feedback"
	"github.com/spf13/cobra"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patterns",
		Aliases: []string{"pattern"},
		Short:   "Inspect learned merchant patterns",
	}

	cmd.AddCommand(patternsListCmd())
	cmd.AddCommand(patternsReplayCmd())

	return cmd
}

func patternsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List learned patterns, strongest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			patterns := feedback.NewStore()
			if err := patterns.Reload(ctx, store); err != nil {
				return fmt.Errorf("failed to load feedback patterns: %w", err)
			}

			fmt.Println(cli.FormatTitle("Learned patterns"))
			fmt.Print(cli.RenderPatterns(patterns.Patterns()))
			return nil
		},
	}
}

func reloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload learned patterns from the correction log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

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

			if err := eng.ReloadPatterns(ctx); err != nil {
				return fmt.Errorf("failed to reload patterns: %w", err)
			}

			stats := eng.GetStatistics()
			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Reloaded %d patterns (%d high confidence)",
				stats.TotalPatterns, stats.HighConfidencePatterns)))
			return nil
		},
	}
}

func patternsReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Rebuild patterns from the correction log",
		Long: `Replay the full correction log and report the rebuilt state. The log is
the source of truth; this verifies the projection matches it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListCorrections(ctx)
			if err != nil {
				return fmt.Errorf("failed to read correction log: %w", err)
			}

			patterns := feedback.NewStore()
			if err := patterns.Reload(ctx, store); err != nil {
				return fmt.Errorf("failed to replay corrections: %w", err)
			}

			stats := patterns.Stats()
			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Replayed %d corrections into %d patterns", len(records), stats.TotalPatterns)))
			return nil
		},
	}
}
