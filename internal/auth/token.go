// Package auth supplies the signed-in user's ID token to the REST client and
// answers "is anyone signed in" without a network round trip.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"smallbasket/internal/config"
)

var (
	ErrNoToken      = errors.New("no user signed in")
	ErrTokenExpired = errors.New("token expired")
)

// TokenSource returns the current bearer token. An empty token with a nil
// error means nobody is signed in.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken always returns the same token.
type StaticToken string

func (s StaticToken) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// FileToken re-reads the token file on every call so a sign-in helper can
// rotate it underneath a running agent. A missing file means signed out.
type FileToken struct {
	Path string
}

func (f FileToken) Token(ctx context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// EnvToken reads the token from an environment variable.
type EnvToken string

func (e EnvToken) Token(ctx context.Context) (string, error) {
	return strings.TrimSpace(os.Getenv(string(e))), nil
}

// NewTokenSource picks a TokenSource from config. A literal token wins over
// a token file; with neither, the SMALLBASKET_TOKEN variable is consulted on
// each call.
func NewTokenSource(cfg config.AuthConfig) TokenSource {
	switch {
	case cfg.Token != "":
		return StaticToken(cfg.Token)
	case cfg.TokenFile != "":
		return FileToken{Path: cfg.TokenFile}
	default:
		return EnvToken("SMALLBASKET_TOKEN")
	}
}

// Claims is the subset of Firebase ID token claims the agent looks at.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// UID returns user_id, falling back to sub.
func (c *Claims) UID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// Inspect decodes token claims WITHOUT verifying the signature. The backend
// verifies; the agent only needs to know who is signed in and whether the
// token is still worth sending.
func Inspect(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}

// Session describes the signed-in user as far as the token tells.
type Session struct {
	UID       string
	Email     string
	ExpiresAt time.Time
}

// CurrentSession resolves the token and checks it has not expired at now.
// Opaque (non-JWT) tokens are accepted as a session with no claims.
func CurrentSession(ctx context.Context, ts TokenSource, now time.Time) (*Session, error) {
	token, err := ts.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoToken
	}
	claims, err := Inspect(token)
	if err != nil {
		return &Session{}, nil
	}
	s := &Session{UID: claims.UID(), Email: claims.Email}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
		if !now.Before(s.ExpiresAt) {
			return s, ErrTokenExpired
		}
	}
	return s, nil
}
