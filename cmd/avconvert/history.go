package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"avconverter/internal/api"
	"avconverter/internal/history"
)

func newHistoryCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently completed conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			records, err := history.NewStore(cfg.History.Path, cfg.History.Limit).List()
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, api.HistoryResponse{Entries: api.FromHistoryRecords(records)})
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversions recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					shortID(record.ID),
					record.FileName,
					record.OutputURL,
					formatTimestamp(record.Date),
				})
			}
			renderTable(cmd.OutOrStdout(),
				[]string{"ID", "File", "Output", "Completed"},
				rows, nil)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the history as JSON")
	cmd.AddCommand(newHistoryClearCommand(cmdCtx))
	return cmd
}

func newHistoryClearCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if err := history.NewStore(cfg.History.Path, cfg.History.Limit).Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return nil
		},
	}
}
