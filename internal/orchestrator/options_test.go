package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/perfscan/internal/perf"
)

func TestResolve(t *testing.T) {
	all := perf.DefaultOptions()
	tests := []struct {
		name       string
		configSkip []string
		opts       Options
		want       perf.AnalysisOptions
	}{
		{name: "defaults", want: all},
		{
			name:       "config skip",
			configSkip: []string{"db"},
			want:       perf.AnalysisOptions{EnableBottleneckDetection: true, EnableComplexityAnalysis: true, EnableMemoryAnalysis: true},
		},
		{
			name: "run skip with commas",
			opts: Options{Skip: []string{"memory, complexity"}},
			want: perf.AnalysisOptions{EnableBottleneckDetection: true, EnableDatabaseAnalysis: true},
		},
		{
			name:       "only wins over config skip",
			configSkip: []string{"database"},
			opts:       Options{Only: []string{"Database"}},
			want:       perf.AnalysisOptions{EnableDatabaseAnalysis: true},
		},
		{
			name: "skip applies after only",
			opts: Options{Only: []string{"database,memory"}, Skip: []string{"mem"}},
			want: perf.AnalysisOptions{EnableDatabaseAnalysis: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolve(tt.configSkip, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveErrors(t *testing.T) {
	_, err := resolve(nil, Options{Skip: []string{"network"}})
	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.ErrorContains(t, err, `unknown analyzer "network"`)

	_, err = resolve(nil, Options{Skip: AnalyzerNames()})
	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.ErrorContains(t, err, "every analyzer is disabled")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitList("a, b", "", " c ,"))
	assert.Nil(t, SplitList())
}

func TestEnabledNames(t *testing.T) {
	assert.Equal(t, []string{"bottlenecks", "complexity", "database", "memory"}, enabledNames(perf.DefaultOptions()))
	assert.Equal(t, []string{"memory"}, enabledNames(perf.AnalysisOptions{EnableMemoryAnalysis: true}))
}
