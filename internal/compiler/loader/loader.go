// Package loader reads contract descriptions from YAML, JSON or HCL files
// into the ast form consumed by the metadata extractor.
//
// Loaders only check the shape of the document: required keys, value kinds
// and unknown keys. Names, types and selectors are validated later by the
// extractor so that every format reports them the same way.
package loader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
	"github.com/conduit-lang/contractabi/internal/compiler/errors"
)

type loadFunc func(data []byte) (*ast.Contract, errors.ErrorList)

var loaders = map[string]loadFunc{
	".yaml": loadYAML,
	".yml":  loadYAML,
	".json": loadYAML,
	".hcl":  loadHCL,
}

// SupportedExtensions lists the file extensions Load understands
func SupportedExtensions() []string {
	exts := make([]string, 0, len(loaders))
	for ext := range loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// IsSupported reports whether path has an extension Load understands
func IsSupported(path string) bool {
	_, ok := loaders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load decodes a description. The format is picked from the extension of
// path; the file itself is not read. Errors carry path as their file.
func Load(path string, data []byte) (*ast.Contract, errors.ErrorList) {
	ext := strings.ToLower(filepath.Ext(path))
	load, ok := loaders[ext]
	if !ok {
		return nil, errors.ErrorList{errors.NewUnsupportedFormat(path, ext, SupportedExtensions())}
	}

	contract, errs := load(data)
	if len(errs) > 0 {
		errs.WithFile(path)
		errs.AttachContext(string(data))
		errs.Sort()
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return contract, errs
}

// LoadFile reads and decodes a description, returning the raw bytes so the
// caller can hash them.
func LoadFile(path string) (*ast.Contract, []byte, errors.ErrorList) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.ErrorList{errors.NewUnreadableSource(path, err)}
	}
	contract, errs := Load(path, data)
	return contract, data, errs
}
