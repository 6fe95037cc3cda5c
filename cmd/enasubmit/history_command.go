package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"enasubmit/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var opts journal.ListOptions
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded submission steps, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cmd.Context(), cfg.JournalPath())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No submissions recorded")
				return nil
			}
			rows := historyRows(entries)
			if isTerminal(out) {
				fmt.Fprintln(out, renderTable(historyHeaders, rows, []int{9}))
				return nil
			}
			return writeTSV(out, historyHeaders, rows)
		},
	}

	cmd.Flags().StringVar(&opts.CorrelationID, "correlation", "", "Only show steps of this invocation")
	cmd.Flags().StringVar(&opts.Alias, "alias", "", "Only show steps for this alias")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 50, "Maximum number of entries")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")
	return cmd
}

var historyHeaders = []string{"Time", "Correlation", "Env", "Step", "Alias", "Status", "Accession", "Released", "Error"}

func historyRows(entries []journal.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		accession := e.Accession
		if accession == "" {
			accession = "-"
		}
		rows = append(rows, []string{
			e.CreatedAt.Local().Format(time.DateTime),
			e.CorrelationID,
			e.Environment,
			e.Step,
			e.Alias,
			e.Status,
			accession,
			yesNo(e.Released),
			e.ErrorKind,
		})
	}
	return rows
}

func writeTSV(w io.Writer, headers []string, rows [][]string) error {
	if _, err := fmt.Fprintln(w, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
