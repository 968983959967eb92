package version

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	CoreVersion = "1.4.0"
	t.Cleanup(func() { CoreVersion = "unknown" })

	var out bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Core Version: v1.4.0")

	out.Reset()
	cmd = NewVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json"})
	require.NoError(t, cmd.Execute())

	var v Versions
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	assert.Equal(t, "1.4.0", v.Version)
	assert.NotEmpty(t, v.GolangVersion)
}
