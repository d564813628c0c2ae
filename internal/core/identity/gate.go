// Package identity answers "is the local user signed in" from the stored credential.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoCredential indicates no credential is stored
var ErrNoCredential = errors.New("no credential stored")

// CredentialStore persists the backend auth token
type CredentialStore interface {
	// Get returns the stored token, or ErrNoCredential
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Navigator changes the current route
type Navigator interface {
	PushRoute(path string)
}

// Claims is the subset of token claims the client looks at.
// Backends issue either a standard subject or a userId claim.
type Claims struct {
	UserID string `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// Viewer describes the local user for one render
type Viewer struct {
	UserID        string
	Token         string
	Authenticated bool
}

// Gate is the single place credential presence is read from
type Gate struct {
	store  CredentialStore
	logger *slog.Logger
	now    func() time.Time
}

// NewGate creates an identity gate over store
func NewGate(store CredentialStore, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Viewer reads the credential once and describes the local user.
// A token that parses as a JWT with a past expiry counts as signed out;
// opaque tokens count as signed in while present.
func (g *Gate) Viewer(ctx context.Context) Viewer {
	token, err := g.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoCredential) {
			g.logger.Warn("failed to read credential", "error", err)
		}
		return Viewer{}
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return Viewer{}
	}

	v := Viewer{Token: token, Authenticated: true}

	claims, err := parseClaims(token)
	if err != nil {
		// Not a JWT; presence is all we can check
		return v
	}

	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(g.now()) {
		g.logger.Debug("stored credential expired", "expired_at", claims.ExpiresAt.Time)
		return Viewer{}
	}

	v.UserID = claims.UserID
	if v.UserID == "" {
		v.UserID = claims.Subject
	}
	return v
}

// IsAuthenticated reports whether a usable credential is stored
func (g *Gate) IsAuthenticated(ctx context.Context) bool {
	return g.Viewer(ctx).Authenticated
}

// Login stores token as the local credential
func (g *Gate) Login(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("login: %w", ErrNoCredential)
	}
	if err := g.store.Set(ctx, token); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// Logout clears the credential and navigates to the front page
func (g *Gate) Logout(ctx context.Context, nav Navigator) error {
	if err := g.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	g.logger.Info("logged out")
	nav.PushRoute("/")
	return nil
}

// parseClaims parses a JWT without verifying its signature.
// The backend verifies tokens; the client only needs expiry and subject.
func parseClaims(token string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}
