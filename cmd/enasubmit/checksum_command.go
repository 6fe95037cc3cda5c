package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"enasubmit/internal/upload"
)

func newChecksumCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "checksum <file>...",
		Short:       "Print the MD5 digest of data files",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				sum, _, err := upload.Checksum(cmd.Context(), path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, path)
			}
			return nil
		},
	}
}
