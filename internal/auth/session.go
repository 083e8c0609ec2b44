package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/1broseidon/workbench/internal/config"
)

// ErrSessionNotEstablished is returned by Login when the signature verified
// but the API still reports no session.
var ErrSessionNotEstablished = errors.New("session not established after verify")

// Session runs the login flow and remembers whether it succeeded.
type Session struct {
	client  *Client
	signer  Signer
	address string
	chainID int
	domain  string
	uri     string
	logger  *zap.Logger
	now     func() time.Time

	mu            sync.Mutex
	authenticated bool
}

// NewSession builds a session from the auth config. Domain and URI fall
// back to the API base URL's host and origin.
func NewSession(cfg config.AuthConfig, signer Signer, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api_base_url: %w", err)
	}
	domain := cfg.Domain
	if domain == "" {
		domain = base.Host
	}
	uri := cfg.URI
	if uri == "" {
		uri = base.Scheme + "://" + base.Host
	}
	return &Session{
		client:  NewClient(cfg.APIBaseURL),
		signer:  signer,
		address: cfg.Address,
		chainID: cfg.ChainID,
		domain:  domain,
		uri:     uri,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Address returns the configured wallet address in checksum form, or as
// configured when it does not parse.
func (s *Session) Address() string {
	if a, err := ChecksumAddress(s.address); err == nil {
		return a
	}
	return s.address
}

// Authenticated reports the last known session state.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *Session) set(ok bool) {
	s.mu.Lock()
	s.authenticated = ok
	s.mu.Unlock()
}

// Check asks the API whether an earlier login is still valid.
func (s *Session) Check(ctx context.Context) (bool, error) {
	info, err := s.client.Session(ctx)
	if err != nil {
		return false, err
	}
	s.set(info.Authenticated)
	return info.Authenticated, nil
}

// Login fetches a nonce, signs the message and verifies it.
func (s *Session) Login(ctx context.Context) error {
	address, err := ChecksumAddress(s.address)
	if err != nil {
		return err
	}
	nonce, err := s.client.Nonce(ctx)
	if err != nil {
		return err
	}
	msg := Message{
		Domain:    s.domain,
		Address:   address,
		Statement: Statement,
		URI:       s.uri,
		Version:   "1",
		ChainID:   s.chainID,
		Nonce:     nonce,
		IssuedAt:  s.now(),
	}.String()

	sig, err := s.signer.Sign(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to sign message: %w", err)
	}
	if err := s.client.Verify(ctx, msg, sig); err != nil {
		return err
	}
	s.set(true)

	// When the session endpoint answers it has the final word. If it cannot
	// be reached the verify response stands.
	ok, err := s.Check(ctx)
	if err != nil {
		s.logger.Warn("session check after login failed", zap.Error(err))
	} else if !ok {
		return ErrSessionNotEstablished
	}
	s.logger.Info("signed in", zap.String("address", address))
	return nil
}

// Logout ends the session. Local state is cleared even when the request fails.
func (s *Session) Logout(ctx context.Context) error {
	s.set(false)
	if err := s.client.Logout(ctx); err != nil {
		s.logger.Warn("logout request failed", zap.Error(err))
		return err
	}
	s.logger.Info("signed out")
	return nil
}
