package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dashpub/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set splunkd credentials (or export SPLUNKD_TOKEN) before running dashpub generate.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and show the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if _, statErr := os.Stat(ctx.configPath); statErr != nil {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, renderSettings(cfg))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func renderSettings(cfg *config.Config) string {
	auth := "none"
	switch {
	case cfg.Splunkd.Token != "":
		auth = "token"
	case cfg.Splunkd.Username != "":
		auth = "basic (" + cfg.Splunkd.Username + ")"
	}
	dashboards := "(none)"
	if len(cfg.Project.Dashboards) > 0 {
		dashboards = strings.Join(cfg.Project.Dashboards, ", ")
	}
	rows := [][]string{
		{"splunkd.url", cfg.Splunkd.URL},
		{"splunkd.auth", auth},
		{"splunkd.timeout_seconds", strconv.Itoa(cfg.Splunkd.TimeoutSeconds)},
		{"project.dir", cfg.Project.Dir},
		{"project.app", cfg.Project.App},
		{"project.asset_namespace", cfg.Project.AssetNamespace},
		{"project.component_extension", cfg.Project.ComponentExtension},
		{"project.dashboards", dashboards},
		{"datasources.extra_selectors", strconv.Itoa(len(cfg.DataSources.ExtraSelectors))},
		{"logging.level", cfg.Logging.Level},
	}
	return renderTable([]string{"Setting", "Value"}, rows, nil, nil)
}
