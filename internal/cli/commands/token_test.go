package commands

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/contractabi/internal/web/auth"
)

const testSecret = "token-test-secret-0123456789"

func TestToken(t *testing.T) {
	t.Setenv("CONTRACTABI_SERVE_AUTH_SECRET", testSecret)

	out, _, err := run(t, t.TempDir(), "token", "--subject", "deploy-bot", "--ttl", "15m")
	require.NoError(t, err)

	svc, err := auth.NewAuthService(testSecret, time.Hour)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "deploy-bot", claims.Subject)
	assert.True(t, claims.HasScope(auth.ScopeReload))
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestToken_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "contractabi.yml", "serve:\n  auth_secret: "+testSecret+"\n  token_ttl: 2h\n")

	out, _, err := run(t, dir, "token", "--scope", "audit")
	require.NoError(t, err)

	svc, err := auth.NewAuthService(testSecret, time.Hour)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "cli", claims.Subject)
	assert.Equal(t, []string{"audit"}, claims.Scopes)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestToken_NoSecret(t *testing.T) {
	_, _, err := run(t, t.TempDir(), "token")
	assert.ErrorContains(t, err, "serve.auth_secret is not set")
}
