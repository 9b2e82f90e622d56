package metadata

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/conduit-lang/contractabi/pkg/abi"
)

// Serialize encodes a manifest as JSON. The output is deterministic: the
// same project always produces the same bytes, which keeps manifests
// diffable and cacheable.
func Serialize(project *abi.Project, pretty bool) ([]byte, error) {
	if project == nil {
		return nil, fmt.Errorf("project cannot be nil")
	}
	return encode(project, pretty)
}

// SerializeExpanded encodes the expanded spec, with literal names and
// rendered type keys instead of symbols
func SerializeExpanded(spec abi.ContractSpec, pretty bool) ([]byte, error) {
	return encode(spec, pretty)
}

func encode(v interface{}, pretty bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to serialize manifest: %w", err)
	}
	return data, nil
}

// Compress compresses data using gzip compression.
// Uses best compression level since compression happens at build time.
func Compress(data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}

	if len(data) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer

	writer, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close() // Ignore close error when write failed
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses gzip-compressed data.
func Decompress(data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}

	if len(data) == 0 {
		return []byte{}, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() {
		_ = reader.Close() // Ignore close error - we already have the data
	}()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress data: %w", err)
	}

	return decompressed, nil
}

// IsCompressed reports whether data starts with the gzip magic bytes
func IsCompressed(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// WriteToFile writes the manifest as indented JSON
func WriteToFile(project *abi.Project, outputPath string) error {
	data, err := Serialize(project, true)
	if err != nil {
		return err
	}
	return writeFile(outputPath, data)
}

// WriteCompressedToFile writes the manifest as gzip-compressed compact JSON
func WriteCompressedToFile(project *abi.Project, outputPath string) error {
	data, err := Serialize(project, false)
	if err != nil {
		return err
	}

	compressed, err := Compress(data)
	if err != nil {
		return fmt.Errorf("failed to compress manifest: %w", err)
	}
	return writeFile(outputPath, compressed)
}

// WriteExpandedToFile writes the expanded spec as indented JSON
func WriteExpandedToFile(spec abi.ContractSpec, outputPath string) error {
	data, err := SerializeExpanded(spec, true)
	if err != nil {
		return err
	}
	return writeFile(outputPath, data)
}

func writeFile(outputPath string, data []byte) error {
	if outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest to %s: %w", outputPath, err)
	}
	return nil
}
