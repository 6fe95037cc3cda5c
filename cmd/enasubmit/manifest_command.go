package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"enasubmit/internal/manifest"
	"enasubmit/internal/upload"
)

// Placeholders stand in for accessions the archive has not issued yet.
const (
	pendingSampleAccession     = "PENDING_SAMPLE_ACCESSION"
	pendingExperimentAccession = "PENDING_EXPERIMENT_ACCESSION"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	var flags requestFlags
	var outDir string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Render the submission documents without contacting the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req, err := flags.request(cfg)
			if err != nil {
				return err
			}
			if err := req.Validate(); err != nil {
				return err
			}

			checksum, _, err := upload.Checksum(cmd.Context(), req.FilePath)
			if err != nil {
				return err
			}
			holdUntil := time.Now().AddDate(0, 0, cfg.Webin.HoldDays)

			envelope, err := manifest.BuildEnvelope(manifest.AddAndHold(req.SampleCenter(), holdUntil))
			if err != nil {
				return err
			}
			sample, err := manifest.BuildSample(req.Sample())
			if err != nil {
				return err
			}
			experiment, err := manifest.BuildExperiment(req.Experiment(pendingSampleAccession))
			if err != nil {
				return err
			}
			run, err := manifest.BuildRun(req.Run(pendingExperimentAccession, checksum))
			if err != nil {
				return err
			}
			docs := []manifest.Document{envelope, sample, experiment, run}

			if strings.TrimSpace(outDir) == "" {
				out := cmd.OutOrStdout()
				for _, doc := range docs {
					fmt.Fprintf(out, "<!-- %s -->\n", doc.Kind)
					if _, err := out.Write(doc.Body); err != nil {
						return err
					}
				}
				return nil
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory %q: %w", outDir, err)
			}
			for _, doc := range docs {
				target := filepath.Join(outDir, strings.ToLower(string(doc.Kind))+".xml")
				if err := os.WriteFile(target, doc.Body, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", target, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			}
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Write one file per document into this directory")
	return cmd
}
