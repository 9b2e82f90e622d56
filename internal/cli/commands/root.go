package commands

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/contractabi/internal/cli/config"
	"github.com/conduit-lang/contractabi/internal/cli/ui"
	"github.com/conduit-lang/contractabi/internal/compiler"
	"github.com/conduit-lang/contractabi/internal/logging"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// flagKeys maps configuration keys to the flag names that override them.
// A key is bound only when the running command defines the flag.
var flagKeys = map[string][]string{
	"build.output":       {"output"},
	"build.compress":     {"compress"},
	"build.expanded":     {"expanded"},
	"selectors.derive":   {"derive-selectors"},
	"selectors.hash":     {"selector-hash", "hash"},
	"serve.addr":         {"addr"},
	"serve.cors_origins": {"cors-origin"},
	"serve.token_ttl":    {"ttl"},
	"store.driver":       {"store-driver"},
	"store.dsn":          {"store-dsn"},
	"log.level":          {"log-level"},
}

// session is the state shared by every command of one invocation
type session struct {
	configDir string
	verbose   bool
	noColor   bool

	cfg *config.Config
	log *zap.Logger
}

// reportedError is returned after the command already rendered the failure
type reportedError struct {
	msg string
}

func (e *reportedError) Error() string { return e.msg }

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	s := &session{log: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "contractabi",
		Short: "Contract ABI metadata compiler and explorer",
		Long: `contractabi compiles contract descriptions (YAML, HCL or JSON) into
compact ABI manifests and lets you inspect and serve them.

A manifest interns every name and type into a registry and refers to them
by symbol, so repeated types are stored once.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = s.log.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&s.configDir, "config-dir", ".", "Directory holding contractabi.yml and .env")
	flags.BoolVarP(&s.verbose, "verbose", "v", false, "Log compiler and server activity to stderr")
	flags.String("log-level", "", "Log level: "+fmt.Sprint(logging.Levels))
	flags.BoolVar(&s.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewBuildCommand(s))
	rootCmd.AddCommand(NewInspectCommand(s))
	rootCmd.AddCommand(NewSelectorCommand(s))
	rootCmd.AddCommand(NewNewCommand(s))
	rootCmd.AddCommand(NewServeCommand(s))
	rootCmd.AddCommand(NewStoreCommand(s))
	rootCmd.AddCommand(NewDocsCommand(s))
	rootCmd.AddCommand(NewTokenCommand(s))
	rootCmd.AddCommand(NewCompletionCommand())
	registerCompletions(rootCmd, s)

	return rootCmd
}

// init loads configuration and builds the logger for the running command
func (s *session) init(cmd *cobra.Command) error {
	if s.noColor || os.Getenv("NO_COLOR") != "" {
		s.noColor = true
		color.NoColor = true
	}

	loader := config.NewLoader(s.configDir)
	for key, names := range flagKeys {
		for _, name := range names {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := loader.BindFlag(key, f); err != nil {
					return err
				}
				break
			}
		}
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), s.noColor))
		return &reportedError{msg: err.Error()}
	}
	s.cfg = cfg

	level := cfg.Log.Level
	if s.verbose && !cmd.Flags().Changed("log-level") {
		level = "debug"
	}
	log, err := logging.New(level, s.verbose)
	if err != nil {
		return err
	}
	s.log = log.With(zap.String("command", cmd.Name()))
	if file := loader.ConfigFile(); file != "" {
		s.log.Debug("loaded config", zap.String("file", file))
	}
	return nil
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the contractabi version, manifest compiler version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			kv := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
			kv.AddRow("contractabi version", Version)
			kv.AddRow("Compiler", compiler.CompilerID+" "+compiler.Version)
			kv.AddRow("Git commit", GitCommit)
			kv.AddRow("Build date", BuildDate)
			kv.AddRow("Go version", goVer)
			kv.Render()
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
