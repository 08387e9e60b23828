package config

const (
	defaultConfigPath         = "~/.config/dashpub/config.toml"
	projectConfigName         = "dashpub.toml"
	defaultSplunkdURL         = "https://localhost:8089"
	defaultSplunkdTimeout     = 30
	defaultProjectDir         = "."
	defaultApp                = "search"
	defaultAssetNamespace     = "splunk-dashboard-studio"
	defaultComponentExtension = "js"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	envFileName               = ".env"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Splunkd: Splunkd{
			URL:            defaultSplunkdURL,
			TimeoutSeconds: defaultSplunkdTimeout,
		},
		Project: Project{
			Dir:                defaultProjectDir,
			App:                defaultApp,
			AssetNamespace:     defaultAssetNamespace,
			ComponentExtension: defaultComponentExtension,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
