package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/contractabi/internal/cli/ui"
	"github.com/conduit-lang/contractabi/internal/store"
	"github.com/conduit-lang/contractabi/runtime/metadata"
)

// NewStoreCommand creates the store command group
func NewStoreCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Publish and fetch manifests from a manifest store",
		Long: `Keep a versioned history of manifests by contract name.

Backends (store.driver):
  sqlite3   file path, default contractabi.db next to contractabi.yml
  postgres  postgres:// URL, lib/pq driver
  pgx       postgres:// URL, pgx driver
  redis     redis:// URL

Publishing a manifest whose fingerprint matches the latest version of the
contract does not create a new version.`,
		Example: `  contractabi store publish erc20.abi.json
  contractabi store list
  contractabi store history ERC20
  contractabi store get ERC20 --version 2 -o erc20.v2.abi.json
  CONTRACTABI_STORE_DRIVER=redis CONTRACTABI_STORE_DSN=redis://localhost:6379/0 contractabi store list`,
	}

	flags := cmd.PersistentFlags()
	flags.String("store-driver", "", "Store backend: "+fmt.Sprint(store.Drivers))
	flags.String("store-dsn", "", "Store address (file path or URL)")

	cmd.AddCommand(newStorePublishCommand(s))
	cmd.AddCommand(newStoreListCommand(s))
	cmd.AddCommand(newStoreHistoryCommand(s))
	cmd.AddCommand(newStoreGetCommand(s))
	return cmd
}

// openStore connects to the configured store
func openStore(ctx context.Context, s *session) (store.Store, error) {
	opts := s.cfg.StoreOptions()
	st, err := store.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	s.log.Debug("opened manifest store", zap.String("driver", opts.Driver))
	return st, nil
}

func newStorePublishCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <manifest>",
		Short: "Publish a manifest as the next version of its contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read manifest: %w", err)
			}
			reg := metadata.New()
			if err := reg.Load(data); err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}
			c, err := reg.Contract()
			if err != nil {
				return err
			}
			m := store.Manifest{Contract: c.Name, Fingerprint: reg.Fingerprint(), Data: data}
			if c.Source != nil {
				m.SourceHash = c.Source.Hash
			}

			st, err := openStore(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer st.Close()

			rec, created, err := st.Publish(cmd.Context(), m)
			if err != nil {
				return err
			}
			s.log.Info("published manifest",
				zap.String("contract", rec.Contract),
				zap.Int64("version", rec.Version),
				zap.Bool("created", created),
			)
			if !created {
				fmt.Fprint(cmd.OutOrStdout(), ui.Info(fmt.Sprintf("%s is unchanged at v%d (%s)", rec.Contract, rec.Version, rec.Fingerprint), s.noColor))
				return nil
			}
			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Published %s v%d (%s)", rec.Contract, rec.Version, rec.Fingerprint), s.noColor)
			return nil
		},
	}
}

func newStoreListCommand(s *session) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the latest version of every contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if format == "json" {
				return writeRecords(cmd, records)
			}
			if len(records) == 0 {
				fmt.Fprint(cmd.OutOrStdout(), ui.Info("No manifests published yet", s.noColor))
				return nil
			}
			t := ui.NewTable(cmd.OutOrStdout(), []string{"CONTRACT", "VERSION", "FINGERPRINT", "PUBLISHED"}, &ui.TableOptions{NoColor: s.noColor})
			for _, r := range records {
				t.AddRow(r.Contract, strconv.FormatInt(r.Version, 10), r.Fingerprint, r.PublishedAt.Format(time.RFC3339))
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")
	return cmd
}

func newStoreHistoryCommand(s *session) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "history <contract>",
		Short: "List every published version of a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.History(cmd.Context(), args[0])
			if err != nil {
				return storeLookupError(cmd, s, st, args[0], err)
			}
			if format == "json" {
				return writeRecords(cmd, records)
			}
			t := ui.NewTable(cmd.OutOrStdout(), []string{"VERSION", "FINGERPRINT", "SOURCE", "PUBLISHED"}, &ui.TableOptions{NoColor: s.noColor})
			for _, r := range records {
				source := r.SourceHash
				if source == "" {
					source = "-"
				}
				t.AddRow(strconv.FormatInt(r.Version, 10), r.Fingerprint, source, r.PublishedAt.Format(time.RFC3339))
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")
	return cmd
}

func newStoreGetCommand(s *session) *cobra.Command {
	var version int64
	var output string
	cmd := &cobra.Command{
		Use:   "get <contract>",
		Short: "Fetch a published manifest",
		Long:  "Fetch the latest (or --version) manifest of a contract and write it to stdout or --output.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer st.Close()

			var rec *store.Record
			if version > 0 {
				rec, err = st.Get(cmd.Context(), args[0], version)
			} else {
				rec, err = st.Latest(cmd.Context(), args[0])
			}
			if err != nil {
				return storeLookupError(cmd, s, st, args[0], err)
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(rec.Data)
				return err
			}
			if err := os.WriteFile(output, rec.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write manifest: %w", err)
			}
			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s v%d → %s", rec.Contract, rec.Version, output), s.noColor)
			return nil
		},
	}
	cmd.Flags().Int64Var(&version, "version", 0, "Version to fetch (default latest)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func checkFormat(format string) error {
	if format != "table" && format != "json" {
		return fmt.Errorf("unknown format %q (expected table or json)", format)
	}
	return nil
}

func writeRecords(cmd *cobra.Command, records []store.Record) error {
	if records == nil {
		records = []store.Record{}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// storeLookupError renders unknown contracts with suggestions from the
// published names.
func storeLookupError(cmd *cobra.Command, s *session, st store.Store, contract string, err error) error {
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	var names []string
	if records, lerr := st.List(cmd.Context()); lerr == nil {
		for _, r := range records {
			names = append(names, r.Contract)
		}
	}
	suggestions := ui.FindSimilar(contract, names, nil)
	out := ui.FormatError(ui.ErrorOptions{
		Level:        ui.ErrorLevelError,
		Context:      "manifest not found",
		Problem:      err.Error(),
		Suggestions:  suggestions,
		HelpCommands: []string{"contractabi store list"},
		NoColor:      s.noColor,
	})
	fmt.Fprint(cmd.ErrOrStderr(), out)
	return &reportedError{msg: err.Error()}
}
