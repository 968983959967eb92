package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/perfscan/internal/config"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		level string
		want  hclog.Level
	}{
		{name: "default", want: hclog.Info},
		{name: "from config", level: "debug", want: hclog.Debug},
		{name: "env wins", env: "error", level: "debug", want: hclog.Error},
		{name: "unknown falls back to info", level: "verbose", want: hclog.Info},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PERFSCAN_LOG_LEVEL", tt.env)
			cfg := &config.Config{Logger: config.Logger{Level: tt.level}}
			assert.Equal(t, tt.want, determineLogLevel(cfg))
		})
	}

	t.Setenv("PERFSCAN_LOG_LEVEL", "")
	assert.Equal(t, hclog.Info, determineLogLevel(nil))
}

func TestNewLoggerJSON(t *testing.T) {
	t.Setenv("PERFSCAN_LOG_LEVEL", "")
	yes := true
	cfg := &config.Config{Logger: config.Logger{Level: "DEBUG", JSONFormat: &yes}}

	var buf bytes.Buffer
	log := newLogger(cfg, "perfscan", &buf)
	log.Named("github").Debug("fetched tree", "entries", 12)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "perfscan.github", line["@module"])
	assert.Equal(t, "fetched tree", line["@message"])
	assert.Equal(t, float64(12), line["entries"])
	assert.NotContains(t, line, "@timestamp")
}
