package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "config.yml"

// Config is the global perfscan configuration.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
	GitHub     GitHub     `yaml:"github"`
	Slack      Slack      `yaml:"slack"`
	Server     Server     `yaml:"server"`
	Analysis   Analysis   `yaml:"analysis"`
	Cache      Cache      `yaml:"cache"`
	Storage    Storage    `yaml:"storage"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

type HTTPClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GitHub configures repository access.
type GitHub struct {
	Token             string  `yaml:"token"`
	BaseURL           string  `yaml:"base_url"` // GitHub Enterprise API root; empty means api.github.com
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	Concurrency       int     `yaml:"concurrency"`
	MaxFiles          int     `yaml:"max_files"`
	MaxFileSize       int64   `yaml:"max_file_size"`
}

// Slack configures slash command handling.
type Slack struct {
	SigningSecret   string        `yaml:"signing_secret"`
	CommandName     string        `yaml:"command_name"`
	ResponseTimeout time.Duration `yaml:"response_timeout"`
	MaxFindings     int           `yaml:"max_findings"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AnalysisTimeout time.Duration `yaml:"analysis_timeout"`
	EnableMetrics   *bool         `yaml:"enable_metrics"`
}

// Analysis holds file selection and threshold defaults.
type Analysis struct {
	Include          []string      `yaml:"include"`
	Exclude          []string      `yaml:"exclude"`
	Skip             []string      `yaml:"skip"`
	MaxMemoryMB      float64       `yaml:"max_memory_mb"`
	MaxComplexity    string        `yaml:"max_complexity"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	MaxDBQueryTime   time.Duration `yaml:"max_db_query_time"`
}

// Cache configures the in-memory result cache.
type Cache struct {
	Enabled    *bool         `yaml:"enabled"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// Storage configures where results are kept on disk.
type Storage struct {
	Enabled       *bool  `yaml:"enabled"`
	HomeFolder    string `yaml:"home_folder"`
	ResultsFolder string `yaml:"results_folder"`
}

// ValidateConfigPath checks that path exists and is a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(data); err != nil {
		return fmt.Errorf("failed to decode %q: %w", configPath, err)
	}
	return nil
}

// ResolveConfigPath picks the config file: the explicit path, then PERFSCAN_CONFIG,
// then config.yml in the working directory. It returns "" when none applies.
func ResolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("PERFSCAN_CONFIG"); env != "" {
		return env
	}
	if ValidateConfigPath(DefaultConfigFile) == nil {
		return DefaultConfigFile
	}
	return ""
}

// LoadConfig builds the configuration from defaults, the resolved config file and the environment.
// The result is not validated; call ValidateConfig before use.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if resolved := ResolveConfigPath(path); resolved != "" {
		if err := LoadYAML(resolved, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config %q: %w", resolved, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overrides secrets and folders from the environment.
func applyEnv(cfg *Config) {
	envMap := map[string]*string{
		"GITHUB_TOKEN":            &cfg.GitHub.Token,
		"PERFSCAN_GITHUB_TOKEN":   &cfg.GitHub.Token,
		"PERFSCAN_GITHUB_URL":     &cfg.GitHub.BaseURL,
		"SLACK_SIGNING_SECRET":    &cfg.Slack.SigningSecret,
		"PERFSCAN_SERVER_ADDR":    &cfg.Server.Addr,
		"PERFSCAN_HOME":           &cfg.Storage.HomeFolder,
		"PERFSCAN_RESULTS_FOLDER": &cfg.Storage.ResultsFolder,
	}
	// PERFSCAN_GITHUB_TOKEN is applied after GITHUB_TOKEN so it wins.
	for _, key := range []string{
		"GITHUB_TOKEN", "PERFSCAN_GITHUB_TOKEN", "PERFSCAN_GITHUB_URL",
		"SLACK_SIGNING_SECRET", "PERFSCAN_SERVER_ADDR", "PERFSCAN_HOME", "PERFSCAN_RESULTS_FOLDER",
	} {
		if value := os.Getenv(key); value != "" {
			*envMap[key] = value
		}
	}
}
