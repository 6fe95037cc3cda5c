package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"enasubmit/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand(ctx))

	return configCmd
}

// newConfigInitCommand writes a starter config. The Webin username and study
// are taken from flags, then WEBIN_USER and WEBIN_STUDY; --production flips
// the endpoint. Passwords are never written to disk.
func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	var targetPath, username, study string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a starter configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(target); err == nil && !overwrite {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("check config path: %w", err)
			}

			opts := config.SampleOptionsFromEnv()
			opts.Username = firstNonEmpty(username, opts.Username)
			opts.StudyAccession = firstNonEmpty(study, opts.StudyAccession)
			opts.Production = ctx.productionFlag != nil && *ctx.productionFlag
			if err := config.CreateSample(target, opts); err != nil {
				return fmt.Errorf("create config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote configuration to %s\n", target)
			if opts.Username != "" {
				fmt.Fprintf(out, "Webin account: %s\n", opts.Username)
			} else {
				fmt.Fprintln(out, "Set webin.username (or export WEBIN_USER) before submitting.")
			}
			if _, ok := os.LookupEnv("WEBIN_PASS"); !ok {
				fmt.Fprintln(out, "Export WEBIN_PASS or set webin.password before submitting.")
			}
			if opts.Production {
				fmt.Fprintln(out, "Submissions will go to the production drop-box.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().StringVar(&username, "username", "", "Webin account to pre-fill (default WEBIN_USER)")
	cmd.Flags().StringVar(&study, "study", "", "Default study accession to pre-fill (default WEBIN_STUDY)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func initTarget(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		target, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return target, nil
	}
	target, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return target, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if ctx.productionFlag != nil && *ctx.productionFlag {
				cfg.Webin.Production = true
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Drop-box: %s (%s)\n", cfg.SubmitURL(), cfg.EnvironmentName())
			if err := cfg.RequireCredentials(); err != nil {
				fmt.Fprintln(out, "Credentials: missing")
			} else {
				fmt.Fprintf(out, "Credentials: %s\n", cfg.Webin.Username)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
