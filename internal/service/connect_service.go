package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/utils"
)

type CallbackParams struct {
	SessionID        string
	TenantID         int64
	State            string
	Code             string
	Error            string
	ErrorDescription string
}

type CodeExchanger interface {
	AuthCodeURL(state string, verifier string) string
	RequestedScopes() []string
	ExchangeCode(ctx context.Context, code string, verifier string) (model.TokenSet, error)
}

type ProfileResolver interface {
	Resolve(ctx context.Context, accessToken string) (model.Profile, error)
}

type ConnectService struct {
	handshakes   *HandshakeService
	tokens       CodeExchanger
	profiles     ProfileResolver
	integrations *IntegrationService
	events       *EventBroker
	platform     string
}

func NewConnectService(platform string, handshakes *HandshakeService, tokens CodeExchanger, profiles ProfileResolver, integrations *IntegrationService, events *EventBroker) *ConnectService {
	return &ConnectService{
		platform:     platform,
		handshakes:   handshakes,
		tokens:       tokens,
		profiles:     profiles,
		integrations: integrations,
		events:       events,
	}
}

// Begin starts a handshake for the session and returns the authorization URL
// the user agent should be sent to.
func (cs *ConnectService) Begin(ctx context.Context, sessionID string, tenantID int64) (string, error) {
	handshake, err := cs.handshakes.Begin(ctx, sessionID, tenantID)
	if err != nil {
		return "", err
	}
	return cs.tokens.AuthCodeURL(handshake.State, handshake.CodeVerifier), nil
}

// Complete validates the callback against the session handshake, exchanges
// the code and stores the connected account.
func (cs *ConnectService) Complete(ctx context.Context, params CallbackParams) (model.Integration, error) {
	if params.Error != "" {
		// The handshake is read once, a rejected attempt must not leave it behind
		if _, err := cs.handshakes.Pull(ctx, params.SessionID); err != nil {
			return model.Integration{}, err
		}
		return model.Integration{}, &ProviderRejectionError{
			Code:        params.Error,
			Description: params.ErrorDescription,
		}
	}

	handshake, err := cs.handshakes.Pull(ctx, params.SessionID)
	if err != nil {
		return model.Integration{}, err
	}

	if err := validateHandshake(handshake, params); err != nil {
		return model.Integration{}, err
	}

	tokens, err := cs.tokens.ExchangeCode(ctx, params.Code, handshake.CodeVerifier)
	if err != nil {
		return model.Integration{}, err
	}

	tokens.Scopes = grantedScopes(cs.tokens.RequestedScopes(), tokens.Scopes)

	profile, err := cs.profiles.Resolve(ctx, tokens.AccessToken)
	if err != nil {
		return model.Integration{}, err
	}

	integration, err := cs.integrations.Upsert(ctx, handshake.TenantID, cs.platform, tokens, profile)
	if err != nil {
		return model.Integration{}, err
	}

	cs.events.Publish(ctx, Event{
		Type:           EventIntegrationConnected,
		TenantID:       integration.TenantID,
		IntegrationID:  integration.ID,
		Platform:       integration.Platform,
		PlatformUserID: integration.PlatformUserID,
	})

	return integration, nil
}

// Disconnect deactivates the integration. The provider token is not revoked.
func (cs *ConnectService) Disconnect(ctx context.Context, tenantID int64, integrationID int64) error {
	integration, err := cs.integrations.GetForTenant(ctx, tenantID, integrationID)
	if err != nil {
		return err
	}

	if err := cs.integrations.SetActive(ctx, tenantID, integrationID, false); err != nil {
		return err
	}

	cs.events.Publish(ctx, Event{
		Type:           EventIntegrationDisconnected,
		TenantID:       tenantID,
		IntegrationID:  integrationID,
		Platform:       integration.Platform,
		PlatformUserID: integration.PlatformUserID,
	})

	return nil
}

func validateHandshake(handshake *model.Handshake, params CallbackParams) error {
	switch {
	case handshake == nil:
		return fmt.Errorf("%w: no pending handshake", ErrHandshakeMismatch)
	case params.State == "" || subtle.ConstantTimeCompare([]byte(handshake.State), []byte(params.State)) != 1:
		return fmt.Errorf("%w: state does not match", ErrHandshakeMismatch)
	case handshake.TenantID != params.TenantID:
		return fmt.Errorf("%w: tenant does not match", ErrHandshakeMismatch)
	case params.Code == "":
		return fmt.Errorf("%w: missing code", ErrHandshakeMismatch)
	case handshake.CodeVerifier == "":
		return fmt.Errorf("%w: missing code verifier", ErrHandshakeMismatch)
	}
	return nil
}

// grantedScopes is the set stored at connect time and the ceiling for every
// later refresh. A response without scope means the requested set was granted.
func grantedScopes(requested []string, granted []string) []string {
	switch {
	case len(requested) == 0:
		return utils.NormalizeList(granted)
	case len(granted) == 0:
		return utils.NormalizeList(requested)
	default:
		return utils.IntersectScopes(requested, granted)
	}
}
