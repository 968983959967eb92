package list

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalcmd "github.com/scan-io-git/perfscan/internal/cmd"
	"github.com/scan-io-git/perfscan/internal/config"
	"github.com/scan-io-git/perfscan/internal/orchestrator"
	perrors "github.com/scan-io-git/perfscan/pkg/shared/errors"
	"github.com/scan-io-git/perfscan/pkg/shared/files"
)

func setup(t *testing.T, stored int) []string {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.ResultsFolder = filepath.Join(t.TempDir(), "results")
	Init(cfg, hclog.NewNullLogger())

	svc, err := internalcmd.BuildService(cfg, nil, nil)
	require.NoError(t, err)
	var ids []string
	for range stored {
		a, err := svc.AnalyzeFiles(context.Background(), "./app", []files.Source{{Path: "app.js", Content: []byte("setInterval(poll, 500);\n")}}, orchestrator.Options{NoCache: true})
		require.NoError(t, err)
		ids = append(ids, a.Result.ID)
	}
	return ids
}

func TestListJSON(t *testing.T) {
	ids := setup(t, 3)
	var out bytes.Buffer

	require.NoError(t, runList(&RunOptionsList{JSON: true}, &out))
	var got []orchestrator.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 3)
	for _, s := range got {
		assert.Contains(t, ids, s.ID)
		assert.Equal(t, "./app", s.Target.Title)
	}

	out.Reset()
	require.NoError(t, runList(&RunOptionsList{JSON: true, Limit: 2}, &out))
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestListTable(t *testing.T) {
	ids := setup(t, 1)
	var out bytes.Buffer

	require.NoError(t, runList(&RunOptionsList{}, &out))
	assert.Contains(t, out.String(), "FINDINGS")
	assert.Contains(t, out.String(), ids[0])
}

func TestListEmptyAndErrors(t *testing.T) {
	setup(t, 0)
	var out bytes.Buffer

	require.NoError(t, runList(&RunOptionsList{}, &out))
	assert.Contains(t, out.String(), "No analyses stored")

	err := runList(&RunOptionsList{Limit: -1}, &out)
	var cmdErr *perrors.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, perrors.ExitInvalidUse, cmdErr.ExitCode)

	disabled := false
	AppConfig.Storage.Enabled = &disabled
	err = runList(&RunOptionsList{}, &out)
	assert.ErrorContains(t, err, "storage is disabled")
}
