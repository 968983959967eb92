package diff

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

const (
	pollSrc = "setInterval(poll, 500);\n"
	loopSrc = `function findUsers(users, ids) {
  for (const id of ids) {
    for (const u of users) {
      if (u.id === id) return u;
    }
  }
}
`
)

// setup stores two analyses: the head adds users.js to the base.
func setup(t *testing.T) (baseID, headID string) {
	t.Helper()
	color.NoColor = true
	cfg := config.Default()
	cfg.Storage.ResultsFolder = filepath.Join(t.TempDir(), "results")
	Init(cfg, hclog.NewNullLogger())

	svc, err := internalcmd.BuildService(cfg, nil, nil)
	require.NoError(t, err)

	poll := files.Source{Path: "poll.js", Content: []byte(pollSrc)}
	users := files.Source{Path: "users.js", Content: []byte(loopSrc)}

	base, err := svc.AnalyzeFiles(context.Background(), "./app", []files.Source{poll}, orchestrator.Options{})
	require.NoError(t, err)
	head, err := svc.AnalyzeFiles(context.Background(), "./app", []files.Source{poll, users}, orchestrator.Options{})
	require.NoError(t, err)
	return base.Result.ID, head.Result.ID
}

func TestDiffJSON(t *testing.T) {
	baseID, headID := setup(t)
	var out bytes.Buffer

	require.NoError(t, runDiff(RunOptionsDiff{JSON: true}, baseID, headID, &out))

	var got Output
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, baseID, got.Base.ID)
	assert.Equal(t, headID, got.Head.ID)
	assert.Empty(t, got.Fixed)
	assert.NotEmpty(t, got.Unchanged)
	require.NotEmpty(t, got.New)
	for _, f := range got.New {
		assert.Equal(t, "users.js", f.Location.File)
	}
	assert.LessOrEqual(t, got.ScoreDiff, 0)
}

func TestDiffTextReversed(t *testing.T) {
	baseID, headID := setup(t)
	var out bytes.Buffer

	require.NoError(t, runDiff(RunOptionsDiff{}, headID, baseID, &out))
	assert.Contains(t, out.String(), "- [")
	assert.Contains(t, out.String(), "users.js")
	assert.Contains(t, out.String(), "0 new,")
}

func TestDiffFailOn(t *testing.T) {
	baseID, headID := setup(t)
	var out bytes.Buffer
	var cmdErr *perrors.CommandError

	err := runDiff(RunOptionsDiff{FailOn: "LOW"}, baseID, headID, &out)
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, perrors.ExitBelowScore, cmdErr.ExitCode)

	require.NoError(t, runDiff(RunOptionsDiff{FailOn: "low"}, headID, baseID, &out), "removing findings is not a regression")
}

func TestDiffErrors(t *testing.T) {
	baseID, _ := setup(t)
	var cmdErr *perrors.CommandError

	err := runDiff(RunOptionsDiff{FailOn: "urgent"}, baseID, baseID, &bytes.Buffer{})
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, perrors.ExitInvalidUse, cmdErr.ExitCode)

	err = runDiff(RunOptionsDiff{}, baseID, "00000000-0000-0000-0000-000000000000", &bytes.Buffer{})
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, perrors.ExitInvalidUse, cmdErr.ExitCode)
	assert.Contains(t, cmdErr.Error(), "failed to load analysis")
}
