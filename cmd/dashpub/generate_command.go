package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dashpub/internal/assets"
	"dashpub/internal/config"
	"dashpub/internal/dashboard"
	"dashpub/internal/datasources"
	"dashpub/internal/generator"
	"dashpub/internal/logging"
	"dashpub/internal/project"
	"dashpub/internal/services"
	"dashpub/internal/splunkd"
)

type generateOptions struct {
	app        string
	projectDir string
	jsonOutput bool
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate [dashboard[:target]...]",
		Short: "Export dashboards into the project folder",
		Long: `Load each dashboard from splunkd, move its data sources into generated data
files, download referenced images, and write the definitions, the component
stubs and both manifests into the project folder.

Previous output is removed first. The run stops at the first dashboard that
fails; asset download failures only produce warnings.

Without arguments, the project.dashboards list from the configuration is used.

Examples:
  dashpub generate sales_overview
  dashpub generate sales_overview ops:operations --app search
  dashpub generate --project ./site --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			return runGenerate(cmd, ctx, cfg, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.app, "app", "", "App namespace to load dashboards from (default project.app)")
	cmd.Flags().StringVarP(&opts.projectDir, "project", "p", "", "Project folder (default project.dir)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}

func runGenerate(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, opts generateOptions, args []string) error {
	app := strings.TrimSpace(opts.app)
	if app == "" {
		app = cfg.Project.App
	}
	dir := cfg.Project.Dir
	if strings.TrimSpace(opts.projectDir) != "" {
		expanded, err := config.ExpandPath(opts.projectDir)
		if err != nil {
			return fmt.Errorf("resolve project path: %w", err)
		}
		dir = expanded
	}

	entries := args
	if len(entries) == 0 {
		entries = cfg.Project.Dashboards
	}
	if len(entries) == 0 {
		return errors.New("no dashboards given; pass names as arguments or set project.dashboards")
	}
	targets, err := generator.ParseTargets(entries)
	if err != nil {
		return err
	}
	if err := generator.ValidateTargets(targets); err != nil {
		return err
	}

	logger, err := ctx.logger(cfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	runCtx := services.WithRunID(cmd.Context(), uuid.NewString())
	logger = logging.WithContext(runCtx, logger)

	client, err := splunkd.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("create splunkd client: %w", err)
	}

	layout, err := project.Open(dir, project.WithComponent(cfg.Project.ComponentExtension, project.DashboardComponent))
	if err != nil {
		return err
	}
	lock, err := project.AcquireLock(dir)
	if err != nil {
		if errors.Is(err, project.ErrLocked) {
			return fmt.Errorf("another dashpub run is using %s", dir)
		}
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.WarnWithContext(logger, "release project lock", "lock_release_failed",
				logging.String("path", lock.Path()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "remove the lock file before the next run"),
			)
		}
	}()

	extractor, err := datasources.NewExtractor(datasources.DefaultSchema().WithContainers(cfg.DataSources.ExtraSelectors...))
	if err != nil {
		return err
	}
	resolver := assets.NewResolver(client, layout, logger)
	transformer := dashboard.NewTransformer(client, extractor, resolver, layout,
		dashboard.WithAssetNamespace(cfg.Project.AssetNamespace),
		dashboard.WithLogger(logger),
	)
	gen := generator.New(transformer, layout,
		generator.WithProgress(newProgressPrinter(cmd.ErrOrStderr())),
		generator.WithLogger(logger),
	)

	logger.Info("starting export",
		logging.String("splunkd", client.Host()),
		logging.String(logging.FieldApp, app),
		logging.String("project", dir),
	)
	summary, err := gen.Generate(runCtx, app, targets)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return writeJSON(cmd, newSummaryJSON(dir, summary))
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d dashboard(s) to %s in %s\n", len(summary.Dashboards), dir, summary.Duration.Round(time.Millisecond))
	return nil
}

func renderSummary(summary generator.Summary) string {
	headers := []string{"Dashboard", "Target", "Title", "Data Sources", "Assets", "Failed"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight}
	rows := make([][]string, 0, len(summary.Dashboards))
	assetTotal, failedTotal := 0, 0
	for _, d := range summary.Dashboards {
		rows = append(rows, []string{
			d.Name,
			d.Target,
			d.Title,
			strconv.Itoa(d.DataSources),
			strconv.Itoa(d.Assets),
			strconv.Itoa(d.FailedAssets),
		})
		assetTotal += d.Assets
		failedTotal += d.FailedAssets
	}
	footer := []string{"Total", "", "", strconv.Itoa(summary.DataSources), strconv.Itoa(assetTotal), strconv.Itoa(failedTotal)}
	return renderTable(headers, rows, aligns, footer)
}

type dashboardJSON struct {
	Name         string `json:"name"`
	Target       string `json:"target"`
	Title        string `json:"title"`
	DataSources  int    `json:"data_sources"`
	Assets       int    `json:"assets"`
	FailedAssets int    `json:"failed_assets"`
}

type summaryJSON struct {
	App         string          `json:"app"`
	Project     string          `json:"project"`
	DataSources int             `json:"data_sources"`
	DurationMS  int64           `json:"duration_ms"`
	Dashboards  []dashboardJSON `json:"dashboards"`
}

func newSummaryJSON(dir string, summary generator.Summary) summaryJSON {
	out := summaryJSON{
		App:         summary.App,
		Project:     dir,
		DataSources: summary.DataSources,
		DurationMS:  summary.Duration.Milliseconds(),
		Dashboards:  make([]dashboardJSON, 0, len(summary.Dashboards)),
	}
	for _, d := range summary.Dashboards {
		out.Dashboards = append(out.Dashboards, dashboardJSON{
			Name:         d.Name,
			Target:       d.Target,
			Title:        d.Title,
			DataSources:  d.DataSources,
			Assets:       d.Assets,
			FailedAssets: d.FailedAssets,
		})
	}
	return out
}
