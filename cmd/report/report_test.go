package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalcmd "github.com/scan-io-git/perfscan/internal/cmd"
	"github.com/scan-io-git/perfscan/internal/config"
	"github.com/scan-io-git/perfscan/internal/orchestrator"
	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
	"github.com/scan-io-git/perfscan/pkg/shared/files"
)

func setup(t *testing.T, options RunOptionsReport) string {
	t.Helper()
	color.NoColor = true
	cfg := config.Default()
	cfg.Storage.ResultsFolder = filepath.Join(t.TempDir(), "results")
	Init(cfg, hclog.NewNullLogger())
	reportOptions = options
	t.Cleanup(func() { reportOptions = RunOptionsReport{} })

	svc, err := internalcmd.BuildService(cfg, nil, nil)
	require.NoError(t, err)
	a, err := svc.AnalyzeFiles(context.Background(), "./app", []files.Source{{Path: "app.js", Content: []byte("setInterval(poll, 500);\n")}}, orchestrator.Options{})
	require.NoError(t, err)
	return a.Result.ID
}

func TestReportToStdout(t *testing.T) {
	id := setup(t, RunOptionsReport{})
	var out bytes.Buffer
	ReportCmd.SetOut(&out)
	t.Cleanup(func() { ReportCmd.SetOut(nil) })

	require.NoError(t, runReportCommand(ReportCmd, []string{id}))
	assert.Contains(t, out.String(), "Performance report: ./app")
}

func TestReportToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	id := setup(t, RunOptionsReport{Format: "sarif", OutputPath: dir})

	require.NoError(t, runReportCommand(ReportCmd, []string{id}))
	data, err := os.ReadFile(filepath.Join(dir, "perfscan-"+id+".sarif"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "2.1.0"`)
}

func TestReportErrors(t *testing.T) {
	setup(t, RunOptionsReport{})
	var cmdErr *perrors.CommandError

	err := runReportCommand(ReportCmd, []string{"00000000-0000-0000-0000-000000000000"})
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, perrors.ExitInvalidUse, cmdErr.ExitCode)

	reportOptions.Format = "pdf"
	err = runReportCommand(ReportCmd, []string{"anything"})
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, perrors.ExitInvalidUse, cmdErr.ExitCode)
}
