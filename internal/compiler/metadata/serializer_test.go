package metadata

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conduit-lang/contractabi/pkg/abi"
)

func flipperProject(t *testing.T) (abi.ContractSpec, *abi.Project) {
	t.Helper()
	spec, errs := extract(t, flipperYAML, Options{})
	if len(errs) > 0 {
		t.Fatalf("Extract() errors = %v", codes(errs))
	}
	project, err := abi.NewProject(spec)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	return spec, project
}

// TestSerialize_RoundTrip tests that serialization is reversible
func TestSerialize_RoundTrip(t *testing.T) {
	_, project := flipperProject(t)

	data, err := Serialize(project, false)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	var decoded abi.Project
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	again, err := Serialize(&decoded, false)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Errorf("Round trip changed manifest:\n%s\n%s", data, again)
	}
}

// TestSerialize_Deterministic tests that output is byte-identical across runs
func TestSerialize_Deterministic(t *testing.T) {
	_, first := flipperProject(t)
	_, second := flipperProject(t)

	a, _ := Serialize(first, true)
	b, _ := Serialize(second, true)
	if !bytes.Equal(a, b) {
		t.Error("Serializing the same contract twice produced different output")
	}
	if !strings.Contains(string(a), "\n  \"registry\"") {
		t.Errorf("Pretty output should be indented:\n%s", a)
	}
}

func TestSerialize_Nil(t *testing.T) {
	if _, err := Serialize(nil, false); err == nil {
		t.Error("Expected error for nil project")
	}
}

func TestSerializeExpanded(t *testing.T) {
	spec, _ := flipperProject(t)
	data, err := SerializeExpanded(spec, false)
	if err != nil {
		t.Fatalf("SerializeExpanded() error = %v", err)
	}
	if !strings.Contains(string(data), `"name":"init_value"`) {
		t.Errorf("Expanded output should carry literal names:\n%s", data)
	}
}

func TestCompressDecompress(t *testing.T) {
	_, project := flipperProject(t)
	data, _ := Serialize(project, true)

	compressed, err := Compress(data)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if !IsCompressed(compressed) {
		t.Error("Compressed data should start with the gzip header")
	}
	if IsCompressed(data) {
		t.Error("JSON should not be detected as compressed")
	}

	decompressed, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if !bytes.Equal(data, decompressed) {
		t.Error("Decompressed data differs from the original")
	}
}

func TestCompress_EdgeCases(t *testing.T) {
	if _, err := Compress(nil); err == nil {
		t.Error("Expected error for nil data")
	}
	if out, err := Compress([]byte{}); err != nil || len(out) != 0 {
		t.Errorf("Compress(empty) = %v, %v", out, err)
	}
	if _, err := Decompress(nil); err == nil {
		t.Error("Expected error for nil data")
	}
	if _, err := Decompress([]byte("not gzip")); err == nil {
		t.Error("Expected error for invalid gzip data")
	}
}

func TestWriteToFile(t *testing.T) {
	spec, project := flipperProject(t)
	dir := t.TempDir()

	plain := filepath.Join(dir, "build", "flipper.json")
	if err := WriteToFile(project, plain); err != nil {
		t.Fatalf("WriteToFile() error = %v", err)
	}
	data, err := os.ReadFile(plain)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !json.Valid(data) {
		t.Error("Written manifest is not valid JSON")
	}

	packed := filepath.Join(dir, "build", "flipper.json.gz")
	if err := WriteCompressedToFile(project, packed); err != nil {
		t.Fatalf("WriteCompressedToFile() error = %v", err)
	}
	data, _ = os.ReadFile(packed)
	if !IsCompressed(data) {
		t.Error("Compressed manifest lacks gzip header")
	}

	expanded := filepath.Join(dir, "flipper.expanded.json")
	if err := WriteExpandedToFile(spec, expanded); err != nil {
		t.Fatalf("WriteExpandedToFile() error = %v", err)
	}

	if err := WriteToFile(project, ""); err == nil {
		t.Error("Expected error for empty output path")
	}
}
