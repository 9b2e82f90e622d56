package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/contractabi/internal/cli/ui"
	"github.com/conduit-lang/contractabi/internal/compiler"
	"github.com/conduit-lang/contractabi/internal/compiler/cache"
	cerrors "github.com/conduit-lang/contractabi/internal/compiler/errors"
	"github.com/conduit-lang/contractabi/internal/compiler/metadata"
	"github.com/conduit-lang/contractabi/internal/watch"
	"github.com/conduit-lang/contractabi/internal/web/server"
)

// NewBuildCommand creates the build command
func NewBuildCommand(s *session) *cobra.Command {
	var jsonErrors, watchMode bool

	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Compile a contract description into an ABI manifest",
		Long: `Compile a contract description (.yml, .yaml, .hcl or .json) into a
manifest.

The build process:
  1. Loading - decode the description into contract declarations
  2. Extraction - resolve types and build the contract spec
  3. Compaction - intern names and types into the registry
  4. Serialization - write the manifest as JSON, optionally gzip-compressed`,
		Example: `  # Build next to the source: erc20.abi.json
  contractabi build erc20.yml

  # Gzip-compressed manifest at a custom path
  contractabi build erc20.yml --compress -o dist/erc20.abi.json.gz

  # Expanded spec with names inline instead of symbols
  contractabi build erc20.yml --expanded

  # Derive missing selectors with the legacy keccak scheme
  contractabi build erc20.yml --derive-selectors --selector-hash keccak

  # Machine-readable diagnostics
  contractabi build erc20.yml --json

  # Rebuild whenever the description is saved
  contractabi build erc20.yml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watchMode {
				return watchBuild(cmd, s, args[0], jsonErrors)
			}
			return runBuild(cmd, s, args[0], jsonErrors, nil)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Manifest path (default: <name>.abi.json next to the source)")
	cmd.Flags().Bool("compress", false, "Gzip the manifest")
	cmd.Flags().Bool("expanded", false, "Write the expanded spec instead of the compact manifest")
	cmd.Flags().Bool("derive-selectors", false, "Derive selectors for entries that omit one")
	cmd.Flags().String("selector-hash", "", "Selector hash scheme: blake2b or keccak")
	cmd.Flags().BoolVar(&jsonErrors, "json", false, "Print diagnostics as JSON")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Rebuild when the description changes")

	return cmd
}

// runBuild compiles path once. With a results cache it skips sources whose
// content matches the last successful build while the manifest still exists.
func runBuild(cmd *cobra.Command, s *session, path string, jsonErrors bool, results *cache.Cache[*compiler.Result]) error {
	start := time.Now()
	build := s.cfg.Build
	if build.Expanded && build.Compress {
		return fmt.Errorf("--expanded and --compress cannot be combined")
	}

	output := build.Output
	if output == "" {
		output = defaultOutput(path, build.Compress, build.Expanded)
	}

	if results != nil {
		hash, err := cache.HashFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if _, ok := results.Lookup(path, hash); ok {
			if _, err := os.Stat(output); err == nil {
				s.log.Debug("source unchanged, skipping build", zap.String("file", path))
				return nil
			}
		}
	}

	result, err := compiler.CompileFile(path, compiler.Options{
		DeriveSelectors: s.cfg.Selectors.Derive,
		SelectorHash:    s.cfg.SelectorHash(),
		Logger:          s.log,
	})
	if err != nil {
		var list cerrors.ErrorList
		if !errors.As(err, &list) {
			return err
		}
		if jsonErrors {
			out, jerr := list.ToJSON()
			if jerr != nil {
				return jerr
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
		} else {
			fmt.Fprint(cmd.ErrOrStderr(), ui.BuildError(path, list, s.noColor))
		}
		return &reportedError{msg: "compilation failed"}
	}

	if len(result.Warnings) > 0 && !jsonErrors {
		for _, line := range ui.Diagnostics(result.Warnings, s.noColor) {
			fmt.Fprintln(cmd.ErrOrStderr(), line)
		}
	}

	switch {
	case build.Expanded:
		err = metadata.WriteExpandedToFile(result.Spec, output)
	case build.Compress:
		err = metadata.WriteCompressedToFile(result.Project, output)
	default:
		err = metadata.WriteToFile(result.Project, output)
	}
	if err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	s.log.Debug("wrote manifest", zap.String("output", output), zap.Duration("elapsed", time.Since(start)))
	if results != nil {
		results.Set(path, result.SourceHash, result)
	}

	reg := result.Project.Registry
	ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s → %s (%d strings, %d types, %d messages)",
		result.Spec.Name(), output, reg.StringCount(), reg.TypeCount(), len(result.Spec.Messages())), s.noColor)
	return nil
}

// watchBuild builds once, then rebuilds on every change until interrupted.
// Compilation failures are reported and watching continues.
func watchBuild(cmd *cobra.Command, s *session, path string, jsonErrors bool) error {
	results := cache.New[*compiler.Result]()
	var mu sync.Mutex
	rebuild := func() error {
		mu.Lock()
		defer mu.Unlock()
		err := runBuild(cmd, s, path, jsonErrors, results)
		var reported *reportedError
		if errors.As(err, &reported) {
			return nil
		}
		return err
	}

	if err := rebuild(); err != nil {
		return err
	}

	fw, err := watch.NewFileWatcher([]string{path}, s.log, func([]string) {
		if err := rebuild(); err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), ui.Warning(err.Error(), nil, s.noColor))
		}
	})
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), ui.Info(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", path), s.noColor))
	ctx, stop := server.SignalContext(cmd.Context())
	defer stop()
	return fw.Run(ctx)
}

// defaultOutput places the manifest next to the source
func defaultOutput(path string, compress, expanded bool) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	switch {
	case expanded:
		return base + ".expanded.json"
	case compress:
		return base + ".abi.json.gz"
	default:
		return base + ".abi.json"
	}
}
