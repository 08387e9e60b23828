package preflight

import (
	"context"

	"dashpub/internal/config"
	"dashpub/internal/splunkd"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Splunkd is the part of the splunkd client the checks use.
type Splunkd interface {
	ServerInfo(ctx context.Context) (*splunkd.ServerInfo, error)
	LoadDashboard(ctx context.Context, name, app string) (*splunkd.Dashboard, error)
}

// RunAll executes the project folder check, the splunkd check and, when the
// endpoint is reachable, one load check per dashboard.
func RunAll(ctx context.Context, cfg *config.Config, client Splunkd, dashboards []string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckProjectDir("Project folder", cfg.Project.Dir)}

	server := CheckSplunkd(ctx, client)
	results = append(results, server)
	if !server.Passed {
		return results
	}

	for _, name := range dashboards {
		results = append(results, CheckDashboard(ctx, client, name, cfg.Project.App))
	}
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
