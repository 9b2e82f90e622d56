package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/contractabi/internal/cli/ui"
	"github.com/conduit-lang/contractabi/internal/docs"
	"github.com/conduit-lang/contractabi/internal/store"
	"github.com/conduit-lang/contractabi/runtime/metadata"
)

type docsOptions struct {
	formats   []string
	outputDir string
	title     string
	baseURL   string
	stdout    bool
	fromStore bool
	version   int64
}

// NewDocsCommand creates the docs command
func NewDocsCommand(s *session) *cobra.Command {
	opts := &docsOptions{}

	cmd := &cobra.Command{
		Use:   "docs <manifest>",
		Short: "Generate reference documentation for a manifest",
		Long: `Generate contract reference documentation:

  markdown  <name>.md            constructors, messages, events and types
  html      <name>.html          single page reference with a filter box
  openapi   <name>.openapi.json  OpenAPI 3.0 description of "contractabi serve"

Argument examples are generated from each argument's type. With
--from-store the argument is a contract name and the latest (or --version)
published manifest is documented.`,
		Example: `  contractabi docs erc20.abi.json
  contractabi docs erc20.abi.json -f markdown --stdout > ERC20.md
  contractabi docs erc20.abi.json -f openapi --base-url https://abi.example.com -o public/
  contractabi docs ERC20 --from-store --version 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var formats []docs.Format
			for _, f := range opts.formats {
				format, err := docs.ParseFormat(f)
				if err != nil {
					return err
				}
				formats = append(formats, format)
			}
			if opts.stdout && len(formats) != 1 {
				return fmt.Errorf("--stdout needs exactly one --format")
			}

			reg, version, err := loadDocsSource(cmd, s, args[0], opts)
			if err != nil {
				return err
			}

			gen, err := docs.NewGenerator(&docs.Config{
				Title:     opts.title,
				Version:   version,
				OutputDir: opts.outputDir,
				Formats:   formats,
				BaseURL:   opts.baseURL,
			})
			if err != nil {
				return err
			}

			if opts.stdout {
				doc, err := gen.Extract(reg)
				if err != nil {
					return err
				}
				return gen.Renderer(formats[0]).Render(doc, cmd.OutOrStdout())
			}

			written, err := gen.Generate(reg)
			for _, path := range written {
				ui.WriteSuccess(cmd.OutOrStdout(), path, s.noColor)
			}
			if err != nil {
				return err
			}
			s.log.Info("generated docs", zap.String("source", args[0]), zap.Strings("files", written))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", nil, "Output format, repeatable: markdown, html, openapi (default all)")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "docs", "Output directory")
	cmd.Flags().StringVar(&opts.title, "title", "", "Heading (default the contract name)")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Explorer URL used in examples and OpenAPI servers")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Write the single --format to stdout")
	cmd.Flags().BoolVar(&opts.fromStore, "from-store", false, "Treat the argument as a contract name in the manifest store")
	cmd.Flags().Int64Var(&opts.version, "version", 0, "Store version with --from-store (default latest)")
	cmd.Flags().String("store-driver", "", "Store backend with --from-store: "+fmt.Sprint(store.Drivers))
	cmd.Flags().String("store-dsn", "", "Store address with --from-store")

	return cmd
}

// loadDocsSource loads the manifest to document and the version label
// shown next to its title
func loadDocsSource(cmd *cobra.Command, s *session, arg string, opts *docsOptions) (*metadata.Registry, string, error) {
	if !opts.fromStore {
		reg, err := loadManifest(arg, s.log)
		return reg, "", err
	}

	st, err := openStore(cmd.Context(), s)
	if err != nil {
		return nil, "", err
	}
	defer st.Close()

	var rec *store.Record
	if opts.version > 0 {
		rec, err = st.Get(cmd.Context(), arg, opts.version)
	} else {
		rec, err = st.Latest(cmd.Context(), arg)
	}
	if err != nil {
		return nil, "", storeLookupError(cmd, s, st, arg, err)
	}

	reg := metadata.New()
	if err := reg.Load(rec.Data); err != nil {
		return nil, "", fmt.Errorf("failed to load %s v%d: %w", rec.Contract, rec.Version, err)
	}
	return reg, fmt.Sprintf("v%d", rec.Version), nil
}
