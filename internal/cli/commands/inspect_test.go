package commands

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/contractabi/runtime/metadata"
)

// buildFlipper compiles the flipper fixture and returns the manifest path
func buildFlipper(t *testing.T, dir string, flags ...string) string {
	t.Helper()
	src := writeFile(t, dir, "flipper.yml", flipperYAML)
	out := filepath.Join(dir, "flipper.abi.json")
	if len(flags) > 0 && flags[0] == "--compress" {
		out += ".gz"
	}
	_, _, err := run(t, dir, append([]string{"build", src, "-o", out}, flags...)...)
	require.NoError(t, err)
	return out
}

func TestInspect_Contract(t *testing.T) {
	dir := t.TempDir()
	manifest := buildFlipper(t, dir)

	out, _, err := run(t, dir, "inspect", manifest)
	require.NoError(t, err)

	for _, want := range []string{
		"Flipper\n",
		"source:      flipper.yml",
		"language:    yaml",
		"Flips a bool.",
		"0x9bae9d5e  new",
		"init_value: bool",
		"0x633aa551  flip",
		"0x2f865bd9  get",
		"Flipped",
		"value: bool (indexed)",
	} {
		assert.Contains(t, out, want)
	}
}

func TestInspect_CompressedManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := buildFlipper(t, dir, "--compress")

	out, _, err := run(t, dir, "inspect", manifest, "--format", "json")
	require.NoError(t, err)

	var c metadata.ContractInfo
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, "Flipper", c.Name)
	assert.Len(t, c.Messages, 2)
}

func TestInspect_Entries(t *testing.T) {
	dir := t.TempDir()
	manifest := buildFlipper(t, dir)

	tests := []struct {
		name string
		arg  string
		want []string
	}{
		{name: "message", arg: "get", want: []string{"message:  get", "selector: 0x2f865bd9", "mutates:  false", "returns:  bool"}},
		{name: "constructor", arg: "new", want: []string{"constructor: new", "init_value  bool"}},
		{name: "event", arg: "Flipped", want: []string{"event Flipped", "value  bool  true"}},
		{name: "selector", arg: "0x633aa551", want: []string{"message:  flip", "mutates:  true"}},
		{name: "type", arg: "bool", want: []string{"type bool", "Used by", "0x2f865bd9 get"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, dir, "inspect", manifest, tt.arg)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestInspect_EntryJSON(t *testing.T) {
	dir := t.TempDir()
	manifest := buildFlipper(t, dir)

	out, _, err := run(t, dir, "inspect", manifest, "flip", "-f", "json")
	require.NoError(t, err)

	var m metadata.MessageInfo
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "flip", m.Name)
	assert.True(t, m.Mutates)
	assert.Nil(t, m.Returns)
}

func TestInspect_Types(t *testing.T) {
	dir := t.TempDir()
	manifest := buildFlipper(t, dir)

	out, _, err := run(t, dir, "inspect", manifest, "--types")
	require.NoError(t, err)
	assert.Contains(t, out, "ID  KIND")
	assert.Contains(t, out, "primitive  bool")
}

func TestInspect_NotFound(t *testing.T) {
	dir := t.TempDir()
	manifest := buildFlipper(t, dir)

	_, stderr, err := run(t, dir, "inspect", manifest, "flp")
	var reported *reportedError
	require.ErrorAs(t, err, &reported)
	assert.Contains(t, stderr, "ENTRY NOT FOUND")
	assert.Contains(t, stderr, "Did you mean: flip")
}

func TestInspect_Errors(t *testing.T) {
	dir := t.TempDir()
	manifest := buildFlipper(t, dir)

	_, _, err := run(t, dir, "inspect", filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "failed to read manifest")

	bad := writeFile(t, dir, "bad.json", "{not json")
	_, _, err = run(t, dir, "inspect", bad)
	assert.ErrorContains(t, err, "failed to load")

	_, _, err = run(t, dir, "inspect", manifest, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}
