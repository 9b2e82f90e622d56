package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/contractabi/internal/web/auth"
)

// NewTokenCommand creates the token command
func NewTokenCommand(s *session) *cobra.Command {
	var subject string
	var scopes []string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the explorer's admin routes",
		Long: `Sign a token with serve.auth_secret (CONTRACTABI_SERVE_AUTH_SECRET).

The token is printed on stdout. Send it as "Authorization: Bearer <token>"
to POST /admin/reload on a server started with the same secret.`,
		Example: `  CONTRACTABI_SERVE_AUTH_SECRET=... contractabi token
  contractabi token --subject deploy-bot --ttl 15m
  curl -X POST -H "Authorization: Bearer $(contractabi token)" localhost:8080/admin/reload`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.cfg.Serve.AuthSecret == "" {
				return errors.New("serve.auth_secret is not set (use CONTRACTABI_SERVE_AUTH_SECRET)")
			}
			svc, err := auth.NewAuthService(s.cfg.Serve.AuthSecret, s.cfg.Serve.TokenTTL)
			if err != nil {
				return err
			}
			token, err := svc.GenerateToken(subject, scopes)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			s.log.Debug("issued token",
				zap.String("subject", subject),
				zap.Strings("scopes", scopes),
				zap.Duration("ttl", s.cfg.Serve.TokenTTL),
			)
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{auth.ScopeReload}, "Granted scope, repeatable")
	cmd.Flags().Duration("ttl", 0, "Token lifetime (default from serve.token_ttl, 1h)")
	return cmd
}
