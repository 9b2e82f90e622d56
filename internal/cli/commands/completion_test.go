package commands

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// complete runs cobra's hidden completion command and returns its output
func complete(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"__complete"}, args...))
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, _, err := run(t, t.TempDir(), "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "contractabi")
		})
	}

	_, _, err := run(t, t.TempDir(), "completion", "tcsh")
	assert.Error(t, err)
}

func TestComplete_InspectEntries(t *testing.T) {
	dir := t.TempDir()
	manifest := buildFlipper(t, dir)

	out := complete(t, "inspect", manifest, "")
	for _, want := range []string{
		"new\tconstructor 0x9bae9d5e\n",
		"flip\tmessage 0x633aa551\n",
		"get\tmessage 0x2f865bd9\n",
		"Flipped\tevent\n",
		":4\n",
	} {
		assert.Contains(t, out, want)
	}

	out = complete(t, "inspect", "missing.abi.json", "")
	assert.Contains(t, out, ":1\n")
}

func TestComplete_Files(t *testing.T) {
	out := complete(t, "build", "")
	assert.True(t, strings.HasPrefix(out, "yaml\nyml\nhcl\njson\n:8\n"), out)

	out = complete(t, "store", "publish", "")
	assert.Contains(t, out, "json\ngz\n:8\n")
}

func TestComplete_Flags(t *testing.T) {
	out := complete(t, "docs", "x.abi.json", "--format", "")
	assert.Contains(t, out, "markdown\nhtml\nopenapi\n:4\n")

	out = complete(t, "selector", "--hash", "")
	assert.Contains(t, out, "blake2b\nkeccak\n:4\n")

	out = complete(t, "serve", "--store-driver", "")
	assert.Contains(t, out, "sqlite3\npostgres\npgx\nredis\n:4\n")
}

func TestComplete_StoreContracts(t *testing.T) {
	dir := t.TempDir()
	publishTwice(t, dir)

	out := complete(t, "store", "history", "--config-dir", dir, "")
	assert.Contains(t, out, "Flipper\tv2\n")

	out = complete(t, "docs", "--from-store", "--config-dir", dir, "")
	assert.Contains(t, out, "Flipper\tv2\n")

	// only the first argument is a contract
	out = complete(t, "store", "get", "--config-dir", dir, "Flipper", "")
	assert.NotContains(t, out, "Flipper")
}
