package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Logger: Logger{Level: "INFO"},
		GitHub: GitHub{
			RequestsPerSecond: 10,
			Burst:             20,
			Concurrency:       8,
			MaxFiles:          300,
			MaxFileSize:       512 * 1024,
		},
		Slack: Slack{
			CommandName:     "/perfscan",
			ResponseTimeout: 10 * time.Second,
			MaxFindings:     10,
		},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AnalysisTimeout: 2 * time.Minute,
		},
		Analysis: Analysis{
			Include: []string{"**/*.{js,jsx,ts,tsx,mjs,cjs,sql}"},
			Exclude: []string{
				"**/node_modules/**",
				"**/dist/**",
				"**/vendor/**",
				"**/*.min.js",
			},
		},
		Cache: Cache{
			TTL:        15 * time.Minute,
			MaxEntries: 256,
		},
	}
}

// GetBoolValue retrieves a boolean value from a nested struct based on a dot-separated path.
// It returns the provided defaultValue if the specified field is not explicitly set or is nil.
func GetBoolValue(config interface{}, fieldPath string, defaultValue bool) bool {
	if config == nil {
		return defaultValue
	}

	val := reflect.ValueOf(config)
	for _, field := range strings.Split(fieldPath, ".") {
		if val.Kind() == reflect.Ptr {
			if val.IsNil() {
				return defaultValue
			}
			val = val.Elem()
		}
		if val.Kind() != reflect.Struct {
			return defaultValue
		}
		val = val.FieldByName(field)
		if !val.IsValid() {
			return defaultValue
		}
	}

	if val.Kind() == reflect.Ptr && !val.IsNil() {
		return val.Elem().Bool()
	} else if val.Kind() == reflect.Bool {
		return val.Bool()
	}
	return defaultValue
}

// SetThen returns value unless it is the zero value of its type, otherwise defaultValue.
func SetThen[T any](value T, defaultValue T) T {
	if reflect.ValueOf(&value).Elem().IsZero() {
		return defaultValue
	}
	return value
}

func proxyURL(p Proxy) string {
	return fmt.Sprintf("%s:%d", strings.TrimRight(p.Host, "/"), p.Port)
}
