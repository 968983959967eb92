package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PERFSCAN_CONFIG", "GITHUB_TOKEN", "PERFSCAN_GITHUB_TOKEN", "PERFSCAN_GITHUB_URL",
		"SLACK_SIGNING_SECRET", "PERFSCAN_SERVER_ADDR", "PERFSCAN_HOME", "PERFSCAN_RESULTS_FOLDER",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
logger:
  level: debug
  json_format: true
http_client:
  retry_count: 2
  timeout: 5s
  tls_client_config:
    verify: false
github:
  base_url: https://ghe.example.com/api/v3/
  max_files: 50
server:
  addr: 127.0.0.1:9090
analysis:
  include: ["src/**/*.ts"]
  max_complexity: O(n²)
cache:
  ttl: 1m
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, GetBoolValue(cfg, "Logger.JSONFormat", false))
	assert.Equal(t, 2, cfg.HTTPClient.RetryCount)
	assert.Equal(t, 5*time.Second, cfg.HTTPClient.Timeout)
	assert.Equal(t, "https://ghe.example.com/api/v3/", cfg.GitHub.BaseURL)
	assert.Equal(t, 50, cfg.GitHub.MaxFiles)
	assert.Equal(t, 8, cfg.GitHub.Concurrency, "unset keys keep defaults")
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, []string{"src/**/*.ts"}, cfg.Analysis.Include)
	assert.Equal(t, Default().Analysis.Exclude, cfg.Analysis.Exclude)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)

	http := cfg.HTTPConfig()
	assert.Equal(t, 2, http.RetryCount)
	assert.Equal(t, 5*time.Second, http.Timeout)
	assert.Equal(t, 5*time.Second, http.RetryMaxWaitTime)
	assert.True(t, http.TLSClientConfig.InsecureSkipVerify)
	assert.False(t, http.Debug)
}

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("GITHUB_TOKEN", "gh-token")
	t.Setenv("PERFSCAN_GITHUB_TOKEN", "perfscan-token")
	t.Setenv("SLACK_SIGNING_SECRET", "shh")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "perfscan-token", cfg.GitHub.Token)
	assert.Equal(t, "shh", cfg.Slack.SigningSecret)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "INFO", cfg.Logger.Level)
}

func TestResolveConfigPath(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	assert.Equal(t, "", ResolveConfigPath(""))

	require.NoError(t, os.WriteFile(DefaultConfigFile, []byte("{}"), 0o644))
	assert.Equal(t, DefaultConfigFile, ResolveConfigPath(""))

	t.Setenv("PERFSCAN_CONFIG", "/etc/perfscan.yml")
	assert.Equal(t, "/etc/perfscan.yml", ResolveConfigPath(""))
	assert.Equal(t, "flag.yml", ResolveConfigPath("flag.yml"))
}

func TestLoadConfigErrors(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")

	_, err = LoadConfig(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestValidateConfigCreatesFolders(t *testing.T) {
	clearEnv(t)
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("PERFSCAN_HOME", home)

	cfg, err := LoadConfig(writeConfig(t, "{}"))
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, home, cfg.Storage.HomeFolder)
	assert.Equal(t, filepath.Join(home, "results"), cfg.Storage.ResultsFolder)
	assert.DirExists(t, cfg.Storage.ResultsFolder)
}

func TestValidateConfigStorageDisabled(t *testing.T) {
	cfg := Default()
	disabled := false
	cfg.Storage.Enabled = &disabled

	require.NoError(t, ValidateConfig(cfg))
	assert.Empty(t, cfg.Storage.HomeFolder)
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		message string
	}{
		{
			name:    "log level",
			mutate:  func(c *Config) { c.Logger.Level = "LOUD" },
			message: "logger directive is invalid",
		},
		{
			name:    "retry count",
			mutate:  func(c *Config) { c.HTTPClient.RetryCount = 21 },
			message: "retry_count must be between 0 and 20",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.HTTPClient.Timeout = -time.Second },
			message: "cannot be negative",
		},
		{
			name:    "proxy port",
			mutate:  func(c *Config) { c.HTTPClient.Proxy = Proxy{Host: "proxy.local", Port: 70000} },
			message: "port must be between 1 and 65535",
		},
		{
			name:    "relative github url",
			mutate:  func(c *Config) { c.GitHub.BaseURL = "ghe/api" },
			message: "github directive is invalid",
		},
		{
			name:    "server addr",
			mutate:  func(c *Config) { c.Server.Addr = "8080" },
			message: "server directive is invalid",
		},
		{
			name:    "glob",
			mutate:  func(c *Config) { c.Analysis.Exclude = []string{"[a-"} },
			message: "invalid glob pattern",
		},
		{
			name:    "complexity label",
			mutate:  func(c *Config) { c.Analysis.MaxComplexity = "O(n^5)" },
			message: "unknown max_complexity",
		},
		{
			name:    "cache ttl",
			mutate:  func(c *Config) { c.Cache.TTL = 48 * time.Hour },
			message: "cache directive is invalid",
		},
	}

	disabled := false
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Storage.Enabled = &disabled
			tt.mutate(cfg)
			assert.ErrorContains(t, ValidateConfig(cfg), tt.message)
		})
	}

	assert.Error(t, ValidateConfig(nil))
}

func TestValidateProxyAddsScheme(t *testing.T) {
	cfg := Default()
	disabled := false
	cfg.Storage.Enabled = &disabled
	cfg.HTTPClient.Proxy = Proxy{Host: "proxy.local/", Port: 3128}

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, "http://proxy.local", cfg.HTTPClient.Proxy.Host)
	assert.Equal(t, "http://proxy.local:3128", cfg.HTTPConfig().Proxy)
}

func TestGetBoolValue(t *testing.T) {
	yes := true
	cfg := &Config{Logger: Logger{DisableTime: &yes}}

	assert.True(t, GetBoolValue(cfg, "Logger.DisableTime", false))
	assert.False(t, GetBoolValue(cfg, "Logger.JSONFormat", false))
	assert.True(t, GetBoolValue(cfg, "Logger.JSONFormat", true))
	assert.True(t, GetBoolValue(cfg, "Logger.Missing", true))
	assert.True(t, GetBoolValue(cfg, "Logger.Level.Deeper", true))
	assert.False(t, GetBoolValue(nil, "Logger.DisableTime", false))

	var nilCfg *Config
	assert.True(t, GetBoolValue(nilCfg, "Logger.DisableTime", true))
}

func TestSetThen(t *testing.T) {
	assert.Equal(t, 3, SetThen(0, 3))
	assert.Equal(t, 7, SetThen(7, 3))
	assert.Equal(t, "x", SetThen("", "x"))
	assert.Equal(t, time.Second, SetThen(time.Duration(0), time.Second))
}
