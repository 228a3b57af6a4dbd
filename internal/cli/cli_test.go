package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "siphon", cmd.Use)

	for _, name := range []string{"counter", "demo"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestCounterCommand_Golden(t *testing.T) {
	out, err := execute(t, "counter", "--log-level", "error", "inc", "Inc", "reset", "inc")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "counter", []byte(out))
}

func TestCounterCommand_RejectsUnknownChange(t *testing.T) {
	_, err := execute(t, "counter", "inc", "explode")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown change "explode"`)
}

func TestCounterCommand_RejectsBadLogLevel(t *testing.T) {
	_, err := execute(t, "counter", "--log-level", "loud", "inc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build logger")
}

func TestDemoCommand_FetchesUsers(t *testing.T) {
	out, err := execute(t, "demo",
		"--log-level", "error",
		"--duration", "400ms",
		"--interval", "50ms",
		"--click-at", "10ms",
		"--latency-min", "0s",
		"--latency-max", "20ms",
		"--seed", "3",
		"--history",
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "elapsed=0s get-users=enabled users=[]", lines[0])
	assert.Contains(t, out, "get-users=disabled")
	assert.Regexp(t, `get-users=enabled users=\[\w+ \w+\]`, out)
	assert.Contains(t, out, "#1 held ")
}
