package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/topictrend/internal/logger"
	"github.com/cognicore/topictrend/pkg/topictrend/config"
)

// app carries state shared by subcommands.
type app struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "topictrend",
		Short: "Canonicalize review phrases into topics and track them over time",
		Long: `topictrend cleans raw review files, assigns every review phrase to a
canonical topic and builds a topics by dates trend table.

Typical run:
  topictrend clean
  topictrend day --date 2024-06-01
  topictrend trend`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger.SetVerbose(a.verbose)
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to YAML config (defaults are used when empty)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "print debug diagnostics")

	root.AddCommand(
		newCleanCmd(a),
		newDayCmd(a),
		newTrendCmd(a),
		newTopicsCmd(a),
	)
	return root
}
