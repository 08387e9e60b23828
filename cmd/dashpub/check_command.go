package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dashpub/internal/generator"
	"dashpub/internal/preflight"
	"dashpub/internal/splunkd"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [dashboard[:target]...]",
		Short: "Verify splunkd access, the project folder and the dashboards",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			entries := args
			if len(entries) == 0 {
				entries = cfg.Project.Dashboards
			}
			targets, err := generator.ParseTargets(entries)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(targets))
			for _, t := range targets {
				names = append(names, t.Name)
			}

			client, err := splunkd.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("create splunkd client: %w", err)
			}
			results := preflight.RunAll(cmd.Context(), cfg, client, names)

			colorize := shouldColorize(cmd.OutOrStdout())
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "ok"
				color := ansiGreen
				if !r.Passed {
					status = "fail"
					color = ansiRed
				}
				if colorize {
					status = color + status + ansiReset
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows, nil, nil))
			if !preflight.Passed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
	return cmd
}
