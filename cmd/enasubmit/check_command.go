package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"enasubmit/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var file string
	var network bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run readiness checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{RunFile: file, Network: network})
			fmt.Fprintln(cmd.OutOrStdout(), renderChecks(results))
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Also check that this run file is readable")
	cmd.Flags().BoolVar(&network, "network", false, "Also check TCP reachability of the drop-box and FTP host")
	return cmd
}

func renderChecks(results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "OK"
		if !r.Passed {
			status = "FAIL"
		}
		rows = append(rows, []string{r.Name, status, r.Detail})
	}
	return renderTable([]string{"Check", "Status", "Detail"}, rows, []int{3})
}
