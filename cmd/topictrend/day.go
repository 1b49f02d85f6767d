package main

import (
	"errors"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cognicore/topictrend/pkg/topictrend/daily"
)

func newDayCmd(a *app) *cobra.Command {
	var dates []string
	cmd := &cobra.Command{
		Use:   "day --date YYYY-MM-DD",
		Short: "Count topics for one or more days of processed reviews",
		Long: `Extracts phrases from processed/<date>.json, assigns each phrase to a
canonical topic and writes the counts to daily/<date>.json. New topics are
added to the topic store as they are learned.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(dates) == 0 {
				return errors.New("--date is required")
			}
			parsed := make([]daily.Date, 0, len(dates))
			for _, s := range dates {
				d, err := daily.ParseDate(s)
				if err != nil {
					return err
				}
				parsed = append(parsed, d)
			}
			sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })

			ctx := cmd.Context()
			comp, err := a.cfg.Build(ctx)
			if err != nil {
				return err
			}
			defer comp.Close()

			p := &daily.Processor{Extractor: comp.Extractor, Canonicalizer: comp.Canonicalizer}
			for _, d := range parsed {
				res, err := p.ProcessDay(ctx, d, a.cfg.Paths.Processed)
				if err != nil {
					return err
				}
				path, err := daily.WriteCounts(a.cfg.Paths.Daily, d, res.Counts)
				if err != nil {
					return err
				}
				cmd.Printf("%s: %d reviews, %d phrases, %d topics (%d new) -> %s [run %s]\n",
					d, res.Reviews, res.Phrases, len(res.Counts), res.Stats.Registered, path, res.RunID)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&dates, "date", "d", nil, "day to process, YYYY-MM-DD (repeatable)")
	return cmd
}
