package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

func (c *Config) normalize() error {
	if err := c.normalizeProject(); err != nil {
		return err
	}
	env, err := readProjectEnv(c.Project.Dir)
	if err != nil {
		return err
	}
	c.normalizeSplunkd(env)
	c.normalizeDataSources()
	return c.normalizeLogging()
}

func (c *Config) normalizeProject() error {
	var err error
	if strings.TrimSpace(c.Project.Dir) == "" {
		c.Project.Dir = defaultProjectDir
	}
	if c.Project.Dir, err = expandPath(strings.TrimSpace(c.Project.Dir)); err != nil {
		return fmt.Errorf("project.dir: %w", err)
	}
	c.Project.App = strings.TrimSpace(c.Project.App)
	if c.Project.App == "" {
		c.Project.App = defaultApp
	}
	c.Project.AssetNamespace = strings.TrimSpace(c.Project.AssetNamespace)
	if c.Project.AssetNamespace == "" {
		c.Project.AssetNamespace = defaultAssetNamespace
	}
	c.Project.ComponentExtension = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Project.ComponentExtension)), ".")
	if c.Project.ComponentExtension == "" {
		c.Project.ComponentExtension = defaultComponentExtension
	}
	dashboards := make([]string, 0, len(c.Project.Dashboards))
	for _, entry := range c.Project.Dashboards {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			dashboards = append(dashboards, trimmed)
		}
	}
	c.Project.Dashboards = dashboards
	return nil
}

// readProjectEnv loads <project>/.env when present. Values only act as
// fallbacks behind the real environment.
func readProjectEnv(dir string) (map[string]string, error) {
	path := filepath.Join(dir, envFileName)
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}

func lookupEnv(env map[string]string, key string) (string, bool) {
	if value, ok := os.LookupEnv(key); ok {
		return value, true
	}
	value, ok := env[key]
	return value, ok
}

func (c *Config) normalizeSplunkd(env map[string]string) {
	fallback := func(current *string, key string) {
		*current = strings.TrimSpace(*current)
		if *current != "" {
			return
		}
		if value, ok := lookupEnv(env, key); ok {
			*current = strings.TrimSpace(value)
		}
	}
	fallback(&c.Splunkd.Username, "SPLUNKD_USER")
	fallback(&c.Splunkd.Password, "SPLUNKD_PASSWORD")
	fallback(&c.Splunkd.Token, "SPLUNKD_TOKEN")

	// url starts at its default before decoding, so the environment also
	// replaces an unchanged default.
	c.Splunkd.URL = strings.TrimSpace(c.Splunkd.URL)
	if c.Splunkd.URL == "" || c.Splunkd.URL == defaultSplunkdURL {
		c.Splunkd.URL = defaultSplunkdURL
		if value, ok := lookupEnv(env, "SPLUNKD_URL"); ok && strings.TrimSpace(value) != "" {
			c.Splunkd.URL = strings.TrimSpace(value)
		}
	}
	c.Splunkd.URL = strings.TrimRight(c.Splunkd.URL, "/")
	if c.Splunkd.TimeoutSeconds <= 0 {
		c.Splunkd.TimeoutSeconds = defaultSplunkdTimeout
	}
}

func (c *Config) normalizeDataSources() {
	selectors := make([]string, 0, len(c.DataSources.ExtraSelectors))
	seen := make(map[string]struct{}, len(c.DataSources.ExtraSelectors))
	for _, selector := range c.DataSources.ExtraSelectors {
		trimmed := strings.TrimSpace(selector)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		selectors = append(selectors, trimmed)
	}
	c.DataSources.ExtraSelectors = selectors
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if file := strings.TrimSpace(c.Logging.File); file != "" {
		expanded, err := expandPath(file)
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = expanded
	}
	return nil
}
