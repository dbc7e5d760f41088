package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mangareel/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent stage runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "Run history is disabled (history.enabled = false)")
				return nil
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					strconv.FormatInt(rec.ID, 10),
					shortRunID(rec.RunID),
					rec.Stage,
					string(rec.Status),
					rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
					formatElapsed(rec),
					historyDetail(rec),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "Run", "Stage", "Status", "Started", "Elapsed", "Detail"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatElapsed(rec history.Record) string {
	if rec.FinishedAt == nil {
		return "-"
	}
	return rec.Duration().Round(100 * time.Millisecond).String()
}

func historyDetail(rec history.Record) string {
	if rec.Error != "" {
		return truncate(rec.Error, 80)
	}
	return rec.OutputPath
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
