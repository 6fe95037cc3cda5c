package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"enasubmit/internal/journal"
	"enasubmit/internal/logging"
	"enasubmit/internal/metrics"
	"enasubmit/internal/notifications"
	"enasubmit/internal/preflight"
	"enasubmit/internal/submission"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var flags requestFlags
	var jsonOutput bool
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Register a sample, experiment and run, uploading the run file",
		Long: `Submit registers the sample, its experiment and the run in order, releasing
each record as soon as it is accepted. The run file is uploaded to the drop-box
FTP area before the run is registered.

A single summary line is printed on stdout:
  <success> <sample> <run> <file> <study> <sample_acc> <exp_acc> <run_acc>
with "null" for accessions that were not obtained.`,
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
			req, err := flags.request(cfg)
			if err != nil {
				return err
			}

			if !skipPreflight {
				results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{RunFile: req.FilePath})
				if failed := preflight.Failed(results); len(failed) > 0 {
					fmt.Fprintln(cmd.ErrOrStderr(), renderChecks(results))
					names := make([]string, 0, len(failed))
					for _, r := range failed {
						names = append(names, r.Name)
					}
					return fmt.Errorf("preflight failed: %s", strings.Join(names, ", "))
				}
			}

			lock, err := journal.AcquireRunLock(cfg.LockPath())
			if err != nil {
				if errors.Is(err, journal.ErrLocked) {
					return fmt.Errorf("%w; wait for it to finish", err)
				}
				return err
			}
			defer lock.Release()

			m := metrics.New()
			opts := submission.Options{
				Transport:   newTransport(cfg),
				Uploader:    newUploader(cfg),
				Notifier:    notifications.NewService(cfg),
				Metrics:     m,
				Logger:      logger,
				Environment: cfg.EnvironmentName(),
				HoldDays:    cfg.Webin.HoldDays,
			}
			if cfg.Journal.Enabled {
				store, err := journal.Open(cmd.Context(), cfg.JournalPath())
				if err != nil {
					logger.Warn("receipt journal unavailable; continuing without it",
						logging.Alert("journal_unavailable"),
						logging.Error(err),
					)
				} else {
					defer store.Close()
					opts.Journal = store
				}
			}

			orch, err := submission.NewOrchestrator(opts)
			if err != nil {
				return err
			}
			outcome := orch.Run(cmd.Context(), req)

			if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				logger.Warn("metrics textfile not written", logging.Error(err))
			}

			s := newSummary(req, outcome)
			if jsonOutput {
				if err := writeJSON(cmd, s); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), s.line())
			}
			if !s.Success {
				return errChainFailed
			}
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip readiness checks before submitting")
	return cmd
}
