package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/topictrend/pkg/topictrend/trend"
)

func newTrendCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Build the topics by dates trend table from daily counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = a.cfg.Paths.Trend
			}
			perDay, err := trend.LoadDir(a.cfg.Paths.Daily)
			if err != nil {
				return err
			}
			m := trend.Build(perDay)
			if err := m.WriteFile(out); err != nil {
				return err
			}
			cmd.Printf("Trend table with %d topics over %d days saved to %s\n", len(m.Topics()), len(m.Dates()), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "CSV output path (default from config)")
	return cmd
}
