package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flipperYAML = `name: Flipper
docs: [Flips a bool.]
constructors:
  - name: new
    selector: "0x9bae9d5e"
    args:
      - name: init_value
        type: bool
messages:
  - name: flip
    selector: "0x633aa551"
    mutates: true
  - name: get
    selector: "0x2f865bd9"
    mutates: false
    returns: bool
events:
  - name: Flipped
    args:
      - name: value
        type: bool
        indexed: true
`

// run executes the CLI with an isolated config directory
func run(t *testing.T, dir string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config-dir", dir, "--no-color"}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// start runs a long-lived command in the background. The returned buffer
// may only be read after the done channel yields.
func start(t *testing.T, ctx context.Context, dir string, args ...string) (*bytes.Buffer, <-chan error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config-dir", dir, "--no-color"}, args...))

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()
	return out, done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("command did not stop after cancel")
		return nil
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "contractabi", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"build", "inspect", "selector", "new", "serve", "store", "token", "docs", "version", "completion"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config-dir", "verbose", "log-level", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	Version, GitCommit, BuildDate = "1.0.0-test", "abc123", "2026-01-01"
	defer func() { Version, GitCommit, BuildDate = "dev", "unknown", "unknown" }()

	out, _, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)

	assert.Contains(t, out, "contractabi version: 1.0.0-test")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "2026-01-01")
	assert.Contains(t, out, "Compiler:")
}

func TestRoot_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "contractabi.yml", "selectors:\n  hash: md5\n")

	_, stderr, err := run(t, dir, "selector", "transfer")
	require.Error(t, err)

	var reported *reportedError
	assert.ErrorAs(t, err, &reported)
	assert.Contains(t, stderr, "CONFIGURATION ERROR")
	assert.Contains(t, stderr, "md5")
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	_, _, err := run(t, t.TempDir(), "--log-level", "loud", "selector", "x")
	assert.Error(t, err)
}

func TestRoot_CompletionCommand(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "contractabi")

	_, _, err = run(t, t.TempDir(), "completion", "tcsh")
	assert.Error(t, err)
}
