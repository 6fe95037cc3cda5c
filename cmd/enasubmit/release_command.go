package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"enasubmit/internal/submission"
)

func newReleaseCommand(ctx *commandContext) *cobra.Command {
	var center string

	cmd := &cobra.Command{
		Use:   "release <accession>",
		Short: "Release a held record so it becomes public",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := cfg.RequireCredentials(); err != nil {
				return err
			}
			accession := strings.TrimSpace(args[0])
			if accession == "" {
				return errors.New("accession is required")
			}

			releaser := submission.NewReleaser(newTransport(cfg), strings.TrimSpace(center), logger)
			res := releaser.Release(cmd.Context(), stepForAccession(accession), accession)
			if !res.OK() {
				return res.Err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Released %s (%s)\n", accession, cfg.EnvironmentName())
			return nil
		},
	}

	cmd.Flags().StringVar(&center, "center", "", "Submitting center name")
	return cmd
}

// stepForAccession labels a release by the record type its prefix implies.
func stepForAccession(accession string) string {
	switch {
	case len(accession) < 3:
		return "release"
	case strings.EqualFold(accession[1:3], "RS"):
		return submission.StepSample
	case strings.EqualFold(accession[1:3], "RX"):
		return submission.StepExperiment
	case strings.EqualFold(accession[1:3], "RR"):
		return submission.StepRun
	default:
		return "release"
	}
}
