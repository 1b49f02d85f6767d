package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newTopicsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List predefined and learned topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules, err := a.cfg.Rules()
			if err != nil {
				return err
			}
			s, err := a.cfg.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			cmd.Printf("Predefined topics (%d):\n", len(rules))
			for _, r := range rules {
				cmd.Printf("  %s: %s\n", r.Topic, strings.Join(r.Keywords, ", "))
			}
			names := s.Names()
			cmd.Printf("Learned topics (%d):\n", len(names))
			for _, name := range names {
				e, _ := s.Get(name)
				cmd.Printf("  %s (%d dims)\n", name, len(e))
			}
			return nil
		},
	}
}
