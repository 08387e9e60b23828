package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ohler55/ojg/jp"

	"dashpub/internal/textutil"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSplunkd(); err != nil {
		return err
	}
	if err := c.validateProject(); err != nil {
		return err
	}
	if err := c.validateDataSources(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSplunkd() error {
	parsed, err := url.Parse(c.Splunkd.URL)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("splunkd.url %q must be an absolute http(s) URL", c.Splunkd.URL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("splunkd.url %q must use http or https", c.Splunkd.URL)
	}
	if c.Splunkd.Token == "" && (c.Splunkd.Username == "") != (c.Splunkd.Password == "") {
		return errors.New("splunkd.username and splunkd.password must be set together (or set SPLUNKD_TOKEN)")
	}
	if c.Splunkd.TimeoutSeconds <= 0 {
		return errors.New("splunkd.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateProject() error {
	if strings.TrimSpace(c.Project.Dir) == "" {
		return errors.New("project.dir must be set")
	}
	if strings.ContainsAny(c.Project.App, "/\\") {
		return fmt.Errorf("project.app %q must not contain path separators", c.Project.App)
	}
	if !textutil.IsPathSegment(c.Project.AssetNamespace) {
		return fmt.Errorf("project.asset_namespace %q must be a single path segment", c.Project.AssetNamespace)
	}
	if strings.ContainsAny(c.Project.ComponentExtension, "/\\.") {
		return fmt.Errorf("project.component_extension %q must be a bare extension such as js", c.Project.ComponentExtension)
	}
	for _, entry := range c.Project.Dashboards {
		name, _, _ := strings.Cut(entry, ":")
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("project.dashboards entry %q has an empty dashboard name", entry)
		}
	}
	return nil
}

func (c *Config) validateDataSources() error {
	for _, selector := range c.DataSources.ExtraSelectors {
		if _, err := jp.ParseString(selector); err != nil {
			return fmt.Errorf("datasources.extra_selectors %q: %w", selector, err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
