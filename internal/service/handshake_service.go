package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/utils"

	"golang.org/x/oauth2"
)

const (
	stateLength        = 40
	codeVerifierLength = 96
)

// HandshakeStore holds in flight OAuth handshakes keyed by session id. Pull
// must return a handshake at most once.
type HandshakeStore interface {
	Save(ctx context.Context, sessionID string, handshake model.Handshake) error
	Pull(ctx context.Context, sessionID string) (*model.Handshake, error)
}

type HandshakeServiceConfig struct {
	Platform string
	TTL      time.Duration
}

type HandshakeService struct {
	config HandshakeServiceConfig
	store  HandshakeStore
	now    func() time.Time
}

func NewHandshakeService(config HandshakeServiceConfig, store HandshakeStore) *HandshakeService {
	return &HandshakeService{
		config: config,
		store:  store,
		now:    time.Now,
	}
}

func (hs *HandshakeService) GenerateState() (string, error) {
	return utils.GetRandomString(stateLength)
}

func (hs *HandshakeService) GenerateCodeVerifier() (string, error) {
	return utils.GetRandomString(codeVerifierLength)
}

// DeriveCodeChallenge is the S256 PKCE transform: base64url(sha256(verifier)) without padding
func DeriveCodeChallenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

func (hs *HandshakeService) Begin(ctx context.Context, sessionID string, tenantID int64) (model.Handshake, error) {
	state, err := hs.GenerateState()
	if err != nil {
		return model.Handshake{}, fmt.Errorf("failed to generate state: %w", err)
	}

	verifier, err := hs.GenerateCodeVerifier()
	if err != nil {
		return model.Handshake{}, fmt.Errorf("failed to generate code verifier: %w", err)
	}

	handshake := model.Handshake{
		State:        state,
		CodeVerifier: verifier,
		TenantID:     tenantID,
		Platform:     hs.config.Platform,
		ExpiresAt:    hs.now().Add(hs.config.TTL),
	}

	err = hs.store.Save(ctx, sessionID, handshake)
	if err != nil {
		return model.Handshake{}, fmt.Errorf("failed to save handshake: %w", err)
	}

	return handshake, nil
}

// Pull consumes the session's handshake. Missing and expired handshakes both return nil.
func (hs *HandshakeService) Pull(ctx context.Context, sessionID string) (*model.Handshake, error) {
	handshake, err := hs.store.Pull(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to pull handshake: %w", err)
	}

	if handshake == nil {
		return nil, nil
	}

	if !handshake.ExpiresAt.After(hs.now()) {
		return nil, nil
	}

	return handshake, nil
}
