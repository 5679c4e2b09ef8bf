package prisma

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Credentials are the access key / secret key pair exchanged for a token.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// Session owns the credentials and current token for one run. It is not safe
// for concurrent use; a run hands the same *Session from login through to
// the last query.
type Session struct {
	client    *Client
	creds     Credentials
	token     Token
	expiresAt time.Time
	now       func() time.Time
	logger    zerolog.Logger
}

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession creates a session, optionally seeded with a previously persisted token.
func NewSession(client *Client, creds Credentials, token Token, logger zerolog.Logger, opts ...SessionOption) *Session {
	s := &Session{
		client: client,
		creds:  creds,
		now:    time.Now,
		logger: logger.With().Str("component", "session").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setToken(token)
	return s
}

// Token returns the current token, empty when none has been obtained.
func (s *Session) Token() Token {
	return s.token
}

// ExpiresAt returns the expiry derived from the current token; zero when unknown.
func (s *Session) ExpiresAt() time.Time {
	return s.expiresAt
}

// IsExpired reports whether the current token must be replaced. A missing
// token or unknown expiry counts as expired.
func (s *Session) IsExpired() bool {
	if s.expiresAt.IsZero() {
		return true
	}
	return !s.expiresAt.After(s.now())
}

func (s *Session) setToken(t Token) {
	s.token = t
	s.expiresAt = time.Time{}
	if t == "" {
		return
	}
	exp, err := t.ExpiresAt()
	if err != nil {
		s.logger.Debug().Err(err).Msg("Token expiry unknown")
		return
	}
	s.expiresAt = exp
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges the credentials for a fresh token. Any failure is an *AuthError.
func (s *Session) Login(ctx context.Context) error {
	req := loginRequest{
		Username: s.creds.AccessKey,
		Password: s.creds.SecretKey,
	}

	var resp tokenResponse
	if err := s.client.do(ctx, http.MethodPost, "login", nil, "", req, &resp); err != nil {
		return &AuthError{Err: err}
	}
	if resp.Token == "" {
		return &AuthError{Err: errors.New("response contained no token")}
	}

	s.setToken(Token(resp.Token))
	s.logger.Info().
		Time("expires_at", s.expiresAt).
		Msg("Logged in")
	return nil
}

// Refresh extends the current token. On failure the session keeps its
// previous token so the caller can fall back to Login.
func (s *Session) Refresh(ctx context.Context) error {
	if s.token == "" {
		return ErrNoToken
	}

	var resp tokenResponse
	if err := s.client.do(ctx, http.MethodGet, "auth_token/extend", nil, s.token, nil, &resp); err != nil {
		return fmt.Errorf("refreshing token: %w", err)
	}
	if resp.Token == "" {
		return errors.New("refreshing token: response contained no token")
	}

	s.setToken(Token(resp.Token))
	s.logger.Info().
		Time("expires_at", s.expiresAt).
		Msg("Token refreshed")
	return nil
}

// LoginOrRefresh makes sure the session holds a usable token:
//
//	no token                -> Login
//	token, not expired      -> reuse
//	token, expired          -> Refresh, then Login if the refresh fails
//
// An error means no usable token could be obtained.
func (s *Session) LoginOrRefresh(ctx context.Context) error {
	if s.token == "" {
		s.logger.Debug().Msg("No stored token, logging in")
		return s.Login(ctx)
	}

	if !s.IsExpired() {
		s.logger.Debug().
			Time("expires_at", s.expiresAt).
			Msg("Reusing stored token")
		return nil
	}

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn().
			Err(err).
			Msg("Token refresh failed, falling back to login")
		return s.Login(ctx)
	}
	return nil
}
