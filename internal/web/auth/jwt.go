// Package auth issues and checks the bearer tokens that guard the
// explorer's admin routes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/conduit-lang/contractabi/internal/web/response"
)

// Issuer is stamped into and required from every token
const Issuer = "contractabi"

// ScopeReload permits POST /admin/reload
const ScopeReload = "reload"

// MinSecretLength is the shortest accepted HMAC secret
const MinSecretLength = 16

// Claims are the token claims
type Claims struct {
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// HasScope reports whether the token grants scope
func (c *Claims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// AuthService generates and validates HS256 tokens
type AuthService struct {
	secretKey []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a service with the given secret key and token TTL
func NewAuthService(secretKey string, tokenTTL time.Duration) (*AuthService, error) {
	if len(secretKey) < MinSecretLength {
		return nil, fmt.Errorf("auth secret must be at least %d bytes", MinSecretLength)
	}
	if tokenTTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	return &AuthService{secretKey: []byte(secretKey), tokenTTL: tokenTTL}, nil
}

// GenerateToken signs a token for subject with the given scopes
func (s *AuthService) GenerateToken(subject string, scopes []string) (string, error) {
	now := time.Now()
	claims := Claims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

// ValidateToken checks signature, algorithm, issuer and expiry
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

type contextKey struct{}

// ClaimsFromContext returns the claims RequireScope stored, if any
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(contextKey{}).(*Claims)
	return c, ok
}

// RequireScope rejects requests without a valid bearer token granting scope
func RequireScope(s *AuthService, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="contractabi"`)
				response.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := s.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="contractabi", error="invalid_token"`)
				msg := "invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "token expired"
				}
				response.Error(w, http.StatusUnauthorized, msg)
				return
			}
			if !claims.HasScope(scope) {
				response.Error(w, http.StatusForbidden, "token lacks scope "+scope)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, claims)))
		})
	}
}
