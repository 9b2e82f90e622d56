// Package compiler drives a description file through loading, extraction
// and compaction into a manifest.
package compiler

import (
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/contractabi/internal/compiler/ast"
	"github.com/conduit-lang/contractabi/internal/compiler/cache"
	"github.com/conduit-lang/contractabi/internal/compiler/errors"
	"github.com/conduit-lang/contractabi/internal/compiler/loader"
	"github.com/conduit-lang/contractabi/internal/compiler/metadata"
	"github.com/conduit-lang/contractabi/pkg/abi"
)

// CompilerID is recorded in the source block of every manifest
const CompilerID = "contractabi"

// Version is the compiler version, set at build time
var Version = "0.1.0"

// Options configures a compilation
type Options struct {
	DeriveSelectors bool
	SelectorHash    abi.SelectorHash
	Logger          *zap.Logger
}

// Result is the output of a successful compilation
type Result struct {
	Spec       abi.ContractSpec
	Project    *abi.Project
	SourceHash string
	// Warnings holds non-fatal diagnostics
	Warnings errors.ErrorList
}

// CompileFile compiles the description at path. On failure the returned
// error is an errors.ErrorList.
func CompileFile(path string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("file", path))
	start := time.Now()

	contract, data, errs := loader.LoadFile(path)
	if errs.HasErrors() {
		log.Debug("load failed", zap.Int("errors", len(errs)))
		return nil, errs
	}
	log.Debug("loaded description",
		zap.String("contract", contract.Name),
		zap.Int("types", len(contract.Types)),
		zap.Int("constructors", len(contract.Constructors)),
		zap.Int("messages", len(contract.Messages)),
		zap.Int("events", len(contract.Events)),
	)

	result, err := compile(path, data, contract, errs, opts, log)
	if err != nil {
		return nil, err
	}
	log.Info("compiled contract",
		zap.String("contract", result.Spec.Name()),
		zap.Int("strings", result.Project.Registry.StringCount()),
		zap.Int("types", result.Project.Registry.TypeCount()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// CompileSource compiles description text. The extension of name selects
// the format.
func CompileSource(name string, data []byte, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	contract, errs := loader.Load(name, data)
	if errs.HasErrors() {
		return nil, errs
	}
	return compile(name, data, contract, errs, opts, log)
}

func compile(path string, data []byte, contract *ast.Contract, warnings errors.ErrorList, opts Options, log *zap.Logger) (*Result, error) {
	extractor := metadata.NewExtractor(metadata.Options{
		DeriveSelectors: opts.DeriveSelectors,
		SelectorHash:    opts.SelectorHash,
	})
	extractor.SetFilePath(path)

	spec, errs := extractor.Extract(contract)
	errs.AttachContext(string(data))
	warnings = append(warnings, errs...)
	if errs.HasErrors() {
		log.Debug("extraction failed", zap.Int("errors", len(errs)))
		return nil, warnings
	}
	for _, w := range warnings {
		log.Warn(w.Message, zap.String("code", string(w.Code)), zap.Stringer("location", w.Location))
	}

	project, err := abi.NewProject(spec)
	if err != nil {
		list := errors.ErrorList{errors.NewCompactionFailed(contract.Loc, err).WithFile(path)}
		return nil, list
	}

	hash := cache.HashContent(data)
	project.Source = &abi.SourceInfo{
		Hash:     "0x" + hash,
		Language: format(path),
		Compiler: CompilerID + " " + Version,
		File:     filepath.Base(path),
	}

	return &Result{
		Spec:       spec,
		Project:    project,
		SourceHash: hash,
		Warnings:   warnings,
	}, nil
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return "hcl"
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}
