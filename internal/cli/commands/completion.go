package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/contractabi/internal/docs"
	"github.com/conduit-lang/contractabi/internal/logging"
	"github.com/conduit-lang/contractabi/internal/store"
)

// NewCompletionCommand creates the completion command for shell completions
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate a shell completion script for contractabi.

Besides commands and flags, completions offer manifest files, the
constructors, messages and events inside a manifest (inspect), and the
contract names in the manifest store (store history/get, --from-store).

  bash        source <(contractabi completion bash)
  zsh         contractabi completion zsh > "${fpath[1]}/_contractabi"
  fish        contractabi completion fish | source
  powershell  contractabi completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

type completeFunc = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

// registerCompletions attaches argument and flag completions to the
// command tree built by NewRootCommand
func registerCompletions(root *cobra.Command, s *session) {
	fixed := func(values ...string) completeFunc {
		return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		}
	}
	var docFormats []string
	for _, f := range docs.Formats {
		docFormats = append(docFormats, string(f))
	}

	_ = root.RegisterFlagCompletionFunc("log-level", fixed(logging.Levels...))

	for _, c := range root.Commands() {
		switch c.Name() {
		case "build":
			c.ValidArgsFunction = firstArg(descriptionFiles)
			_ = c.RegisterFlagCompletionFunc("selector-hash", fixed("blake2b", "keccak"))
		case "inspect":
			c.ValidArgsFunction = completeInspect(s)
			_ = c.RegisterFlagCompletionFunc("format", fixed("table", "json"))
		case "selector":
			_ = c.RegisterFlagCompletionFunc("hash", fixed("blake2b", "keccak"))
		case "new":
			_ = c.RegisterFlagCompletionFunc("format", fixed("yaml", "hcl"))
		case "serve":
			c.ValidArgsFunction = manifestOrContract(s)
			_ = c.RegisterFlagCompletionFunc("store-driver", fixed(store.Drivers...))
		case "docs":
			c.ValidArgsFunction = manifestOrContract(s)
			_ = c.RegisterFlagCompletionFunc("format", fixed(docFormats...))
			_ = c.RegisterFlagCompletionFunc("store-driver", fixed(store.Drivers...))
		case "store":
			_ = c.RegisterFlagCompletionFunc("store-driver", fixed(store.Drivers...))
			for _, sub := range c.Commands() {
				switch sub.Name() {
				case "publish":
					sub.ValidArgsFunction = firstArg(manifestFiles)
				case "history", "get":
					sub.ValidArgsFunction = firstArg(completeContracts(s))
				}
				if sub.Flags().Lookup("format") != nil {
					_ = sub.RegisterFlagCompletionFunc("format", fixed("table", "json"))
				}
			}
		}
	}
}

// firstArg only completes the first positional argument
func firstArg(fn completeFunc) completeFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return fn(cmd, args, toComplete)
	}
}

func manifestFiles(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"json", "gz"}, cobra.ShellCompDirectiveFilterFileExt
}

func descriptionFiles(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"yaml", "yml", "hcl", "json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeInspect offers manifest files, then the entries of the chosen
// manifest with their kind and selector as descriptions
func completeInspect(s *session) completeFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		switch len(args) {
		case 0:
			return manifestFiles(cmd, args, toComplete)
		case 1:
			reg, err := loadManifest(args[0], s.log)
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			var out []string
			for _, c := range reg.Constructors() {
				out = append(out, fmt.Sprintf("%s\tconstructor %s", c.Name, c.Selector.Hex()))
			}
			for _, m := range reg.Messages() {
				out = append(out, fmt.Sprintf("%s\tmessage %s", m.Name, m.Selector.Hex()))
			}
			for _, e := range reg.Events() {
				out = append(out, e.Name+"\tevent")
			}
			return out, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}

func manifestOrContract(s *session) completeFunc {
	return firstArg(func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if fromStore, _ := cmd.Flags().GetBool("from-store"); fromStore {
			return completeContracts(s)(cmd, args, toComplete)
		}
		return manifestFiles(cmd, args, toComplete)
	})
}

// completeContracts lists the contracts in the configured store. Completion
// runs without the root pre-run, so the session is set up here.
func completeContracts(s *session) completeFunc {
	return func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		if s.cfg == nil {
			if err := s.init(cmd); err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		st, err := openStore(ctx, s)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		defer st.Close()

		records, err := st.List(ctx)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		out := make([]string, 0, len(records))
		for _, r := range records {
			out = append(out, fmt.Sprintf("%s\tv%d", r.Contract, r.Version))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
