package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashContent(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{name: "empty", content: nil, want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{name: "hello world", content: []byte("hello world"), want: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HashContent(tt.content))
		})
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flipper.yml")
	content := []byte("contract: Flipper\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	got, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, HashContent(content), got)

	_, err = HashFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
