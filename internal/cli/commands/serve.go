package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/contractabi/internal/cli/ui"
	"github.com/conduit-lang/contractabi/internal/store"
	"github.com/conduit-lang/contractabi/internal/watch"
	"github.com/conduit-lang/contractabi/internal/web/auth"
	"github.com/conduit-lang/contractabi/internal/web/router"
	"github.com/conduit-lang/contractabi/internal/web/server"
	"github.com/conduit-lang/contractabi/runtime/metadata"
)

// NewServeCommand creates the serve command
func NewServeCommand(s *session) *cobra.Command {
	var routesOnly, watchMode, fromStore bool

	cmd := &cobra.Command{
		Use:   "serve <manifest>",
		Short: "Serve a manifest over a read-only HTTP API",
		Long: `Load a manifest and expose it as JSON:

  GET /contract              resolved contract
  GET /constructors          constructors
  GET /messages              messages (?mutates=, ?name=, ?type=)
  GET /messages/{name}       one message
  GET /selectors/{selector}  constructor or message by selector
  GET /events                events (?name=)
  GET /events/{name}         one event
  GET /types/dependencies    type graph (?type=, ?reverse=, ?depth=)
  GET /registry/strings      interned strings
  GET /registry/types        type table
  GET /healthz               liveness

With --from-store the argument is a contract name and the latest published
version is served from the manifest store.

With --watch the manifest is reloaded whenever it changes on disk. When
serve.auth_secret is set, POST /admin/reload reloads it on demand for
tokens with the reload scope (see "contractabi token"). A manifest that
fails to load is logged and the previous one keeps serving. Reloads are
pushed to WebSocket clients on GET /ws.

The server stops gracefully on SIGINT or SIGTERM.`,
		Example: `  contractabi serve erc20.abi.json
  contractabi serve erc20.abi.json --addr 127.0.0.1:9000 --cors-origin https://app.example.com
  CONTRACTABI_SERVE_ADDR=:9000 contractabi serve erc20.abi.json.gz
  contractabi serve erc20.abi.json --watch
  CONTRACTABI_SERVE_AUTH_SECRET=... contractabi serve ERC20 --from-store`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStore && watchMode {
				return errors.New("--watch needs a manifest file; use POST /admin/reload with --from-store")
			}

			fetch := func(context.Context) ([]byte, error) { return readManifest(args[0]) }
			if fromStore {
				st, err := openStore(cmd.Context(), s)
				if err != nil {
					return err
				}
				defer st.Close()
				fetch = func(ctx context.Context) ([]byte, error) {
					rec, err := st.Latest(ctx, args[0])
					if err != nil {
						return nil, err
					}
					return rec.Data, nil
				}
			}

			data, err := fetch(cmd.Context())
			if err != nil {
				return err
			}
			reg := metadata.New()
			if err := reg.Load(data); err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}
			log := s.log.With(zap.String("source", args[0]))

			opts := router.Options{
				Logger:      s.log,
				CORSOrigins: s.cfg.Serve.CORSOrigins,
			}
			if s.cfg.Serve.AuthSecret != "" {
				opts.Auth, err = auth.NewAuthService(s.cfg.Serve.AuthSecret, s.cfg.Serve.TokenTTL)
				if err != nil {
					return err
				}
			}
			var live *watch.ReloadServer
			if watchMode || opts.Auth != nil {
				live = watch.NewReloadServer(s.log, s.cfg.Serve.CORSOrigins)
				defer live.Close()
				opts.Live = live
			}
			reload := newReloader(reg, fetch, live, log)
			opts.Reload = reload
			handler := router.New(reg, opts)

			if routesOnly {
				t := ui.NewTable(cmd.OutOrStdout(), []string{"METHOD", "PATTERN"}, &ui.TableOptions{NoColor: s.noColor})
				routes, err := router.Routes(handler)
				if err != nil {
					return err
				}
				for _, r := range routes {
					t.AddRow(r.Method, r.Pattern)
				}
				t.Render()
				return nil
			}

			cfg := server.DefaultConfig(handler)
			cfg.Address = s.cfg.Serve.Addr
			cfg.Logger = s.log
			srv, err := server.New(cfg)
			if err != nil {
				return err
			}
			if err := srv.Listen(); err != nil {
				return err
			}

			c, _ := reg.Contract()
			fmt.Fprint(cmd.OutOrStdout(), ui.Info(fmt.Sprintf("Serving %s on http://%s", c.Name, srv.Addr()), s.noColor))
			log.Info("serving manifest",
				zap.String("addr", srv.Addr()),
				zap.String("fingerprint", reg.Fingerprint()),
				zap.Bool("admin", opts.Auth != nil),
			)

			ctx, stop := server.SignalContext(cmd.Context())
			defer stop()

			if watchMode {
				fw, err := watch.NewFileWatcher([]string{args[0]}, s.log, func([]string) {
					_, _ = reload(ctx)
				})
				if err != nil {
					return err
				}
				if err := fw.Start(); err != nil {
					return err
				}
				defer fw.Stop()
			}

			return srv.Run(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from serve.addr, :8080)")
	cmd.Flags().StringSlice("cors-origin", nil, "Allowed CORS origin, repeatable (default from serve.cors_origins)")
	cmd.Flags().BoolVar(&routesOnly, "routes", false, "List the routes and exit")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Reload the manifest when it changes")
	cmd.Flags().BoolVar(&fromStore, "from-store", false, "Treat the argument as a contract name in the manifest store")
	cmd.Flags().String("store-driver", "", "Store backend with --from-store: "+fmt.Sprint(store.Drivers))
	cmd.Flags().String("store-dsn", "", "Store address with --from-store")

	return cmd
}

func readManifest(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return data, nil
}

// newReloader returns the reload shared by the file watcher and the admin
// route. A failed reload leaves reg serving what it had; live, if set,
// hears about every outcome that matters to a client.
func newReloader(reg *metadata.Registry, fetch func(context.Context) ([]byte, error), live *watch.ReloadServer, log *zap.Logger) router.Reloader {
	var mu sync.Mutex
	return func(ctx context.Context) (*router.ReloadResult, error) {
		mu.Lock()
		defer mu.Unlock()

		previous := reg.Fingerprint()
		data, err := fetch(ctx)
		if err == nil {
			err = reg.Load(data)
		}
		if err != nil {
			log.Warn("manifest reload failed, keeping previous", zap.Error(err))
			if live != nil {
				live.NotifyError(err)
			}
			return nil, err
		}

		c, err := reg.Contract()
		if err != nil {
			return nil, err
		}
		result := &router.ReloadResult{
			Contract:    c.Name,
			Fingerprint: reg.Fingerprint(),
			Previous:    previous,
			Changed:     reg.Fingerprint() != previous,
		}
		log.Info("reloaded manifest",
			zap.String("previous", previous),
			zap.String("fingerprint", result.Fingerprint),
			zap.Bool("changed", result.Changed),
		)
		if live != nil && result.Changed {
			live.NotifyReload(result.Contract, result.Fingerprint, previous)
		}
		return result, nil
	}
}
