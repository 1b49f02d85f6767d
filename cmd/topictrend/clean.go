package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/topictrend/pkg/topictrend/ingest"
)

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Clean raw review files into the processed directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			written, err := ingest.CleanDir(a.cfg.Paths.Raw, a.cfg.Paths.Processed)
			if err != nil {
				return err
			}
			cmd.Printf("Cleaned %d files into %s\n", len(written), a.cfg.Paths.Processed)
			return nil
		},
	}
}
