package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/scan-io-git/perfscan/pkg/shared/files"
)

var knownComplexities = map[string]bool{
	"O(1)": true, "O(log n)": true, "O(n)": true, "O(n log n)": true,
	"O(n²)": true, "O(n³)": true, "O(2^n)": true, "O(n!)": true,
}

// ValidateConfig checks if the global configurations have valid values.
// It also resolves and creates the storage folders.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateLoggerConfig(&cfg.Logger); err != nil {
		return fmt.Errorf("YAML global config: logger directive is invalid: %w", err)
	}
	if err := ValidateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	if err := ValidateGitHubConfig(&cfg.GitHub); err != nil {
		return fmt.Errorf("YAML global config: github directive is invalid: %w", err)
	}
	if err := ValidateServerConfig(&cfg.Server); err != nil {
		return fmt.Errorf("YAML global config: server directive is invalid: %w", err)
	}
	if err := ValidateAnalysisConfig(&cfg.Analysis); err != nil {
		return fmt.Errorf("YAML global config: analysis directive is invalid: %w", err)
	}
	if err := ValidateCacheConfig(&cfg.Cache); err != nil {
		return fmt.Errorf("YAML global config: cache directive is invalid: %w", err)
	}
	if err := ValidateStorageConfig(cfg); err != nil {
		return fmt.Errorf("YAML global config: storage directive is invalid: %w", err)
	}
	return nil
}

// ValidateLoggerConfig checks the log level name.
func ValidateLoggerConfig(l *Logger) error {
	switch strings.ToUpper(l.Level) {
	case "", "TRACE", "DEBUG", "INFO", "WARN", "ERROR":
		return nil
	}
	return fmt.Errorf("unknown level %q", l.Level)
}

// ValidateHTTPConfig checks if the HTTP configurations have valid values.
func ValidateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"retry_max_wait_time": httpConfig.RetryMaxWaitTime,
		"retry_wait_time":     httpConfig.RetryWaitTime,
		"timeout":             httpConfig.Timeout,
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 100*time.Second); err != nil {
			return err
		}
	}

	return validateProxy(&httpConfig.Proxy)
}

// ValidateGitHubConfig checks the API root and the client limits.
func ValidateGitHubConfig(gh *GitHub) error {
	if gh.BaseURL != "" {
		u, err := url.Parse(gh.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("base_url must be an absolute URL: %q", gh.BaseURL)
		}
	}
	if gh.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second cannot be negative: %v", gh.RequestsPerSecond)
	}
	if gh.Concurrency < 0 || gh.Concurrency > 64 {
		return fmt.Errorf("concurrency must be between 0 and 64: %d", gh.Concurrency)
	}
	if gh.MaxFiles < 0 {
		return fmt.Errorf("max_files cannot be negative: %d", gh.MaxFiles)
	}
	if gh.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size cannot be negative: %d", gh.MaxFileSize)
	}
	return nil
}

// ValidateServerConfig checks the listen address and timeouts.
func ValidateServerConfig(s *Server) error {
	if s.Addr != "" && !strings.Contains(s.Addr, ":") {
		return fmt.Errorf("addr must be host:port or :port: %q", s.Addr)
	}
	durations := map[string]time.Duration{
		"read_timeout":     s.ReadTimeout,
		"write_timeout":    s.WriteTimeout,
		"shutdown_timeout": s.ShutdownTimeout,
		"analysis_timeout": s.AnalysisTimeout,
	}
	for name, d := range durations {
		if err := validateDuration(d, name, 1*time.Hour); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAnalysisConfig checks globs, threshold values and skipped analyzer names.
func ValidateAnalysisConfig(a *Analysis) error {
	for _, p := range append(append([]string{}, a.Include...), a.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	if a.MaxMemoryMB < 0 {
		return fmt.Errorf("max_memory_mb cannot be negative: %v", a.MaxMemoryMB)
	}
	if a.MaxComplexity != "" && !knownComplexities[a.MaxComplexity] {
		return fmt.Errorf("unknown max_complexity %q", a.MaxComplexity)
	}
	if err := validateDuration(a.MaxExecutionTime, "max_execution_time", 1*time.Hour); err != nil {
		return err
	}
	return validateDuration(a.MaxDBQueryTime, "max_db_query_time", 1*time.Hour)
}

// ValidateCacheConfig checks cache bounds.
func ValidateCacheConfig(c *Cache) error {
	if c.MaxEntries < 0 {
		return fmt.Errorf("max_entries cannot be negative: %d", c.MaxEntries)
	}
	return validateDuration(c.TTL, "ttl", 24*time.Hour)
}

// ValidateStorageConfig resolves the home and results folders and creates them when storage is enabled.
func ValidateStorageConfig(cfg *Config) error {
	if !GetBoolValue(cfg, "Storage.Enabled", true) {
		return nil
	}
	if err := updateHome(cfg); err != nil {
		return fmt.Errorf("failed to update home folder: %w", err)
	}
	if err := updateFolder(&cfg.Storage.ResultsFolder, "results", cfg); err != nil {
		return fmt.Errorf("failed to update results folder: %w", err)
	}
	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy == nil {
		return fmt.Errorf("proxy configuration is nil")
	}
	// If host or port is not set, skip further validation
	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}
	if err := validateHost(&proxy.Host); err != nil {
		return err
	}
	return validatePort(proxy.Port)
}

// validateHost ensures the host includes a scheme; adds "http" if missing.
func validateHost(host *string) error {
	if host == nil {
		return fmt.Errorf("host string pointer is nil")
	}
	if !strings.Contains(*host, "://") {
		*host = "http://" + *host
	}
	*host = strings.TrimRight(*host, "/")

	u, err := url.Parse(*host)
	if err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid host URL: %q has no host", *host)
	}
	return nil
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// updateHome sets Storage.HomeFolder from the config or ~/.perfscan and creates it.
// PERFSCAN_HOME has already been applied by LoadConfig.
func updateHome(cfg *Config) error {
	if cfg.Storage.HomeFolder == "" {
		homeFolder, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("unable to get user home folder: %w", err)
		}
		cfg.Storage.HomeFolder = filepath.Join(homeFolder, ".perfscan")
	}

	expanded, err := files.ExpandPath(cfg.Storage.HomeFolder)
	if err != nil {
		return fmt.Errorf("failed to expand home path %q: %w", cfg.Storage.HomeFolder, err)
	}
	cfg.Storage.HomeFolder = expanded

	if err := files.CreateFolderIfNotExists(expanded); err != nil {
		return fmt.Errorf("failed to create home folder %q: %w", expanded, err)
	}
	return nil
}

// updateFolder defaults folder to a subfolder of the home folder, expands and creates it.
func updateFolder(folder *string, defaultSubFolder string, cfg *Config) error {
	if *folder == "" {
		*folder = filepath.Join(cfg.Storage.HomeFolder, defaultSubFolder)
	}

	expanded, err := files.ExpandPath(*folder)
	if err != nil {
		return fmt.Errorf("failed to expand path %q: %w", *folder, err)
	}
	*folder = expanded

	if err := files.CreateFolderIfNotExists(expanded); err != nil {
		return fmt.Errorf("failed to create folder %q: %w", expanded, err)
	}
	return nil
}
