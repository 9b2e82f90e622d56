package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/contractabi/pkg/abi"
)

// NewSelectorCommand creates the selector command
func NewSelectorCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selector <signature>",
		Short: "Derive a 4-byte selector",
		Long: `Derive the selector the compiler would assign with --derive-selectors.

blake2b hashes the entry label as written (e.g. "transfer").
keccak hashes a signature such as "transfer(address,uint256)".`,
		Example: `  contractabi selector transfer
  contractabi selector "transfer(address,uint256)" --hash keccak`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := abi.ParseSelectorHash(s.cfg.Selectors.Hash)
			if err != nil {
				return err
			}
			sel, err := abi.DeriveSelector(hash, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sel.Hex())
			return nil
		},
	}

	cmd.Flags().String("hash", "", "Hash scheme: blake2b or keccak (default from selectors.hash)")

	return cmd
}
