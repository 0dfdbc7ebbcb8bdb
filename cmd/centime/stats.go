package main

import (
	"fmt"

	"github.com/centime-app/centime/internal/cli"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics",
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

			fmt.Println(cli.RenderStats(eng.GetStatistics()))
			return nil
		},
	}
}
