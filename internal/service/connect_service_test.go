package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/tinypost/tinypost/internal/config"
	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/service"

	"gotest.tools/v3/assert"
)

func saveHandshake(t *testing.T, env *testEnv, sessionID string) {
	store := service.NewDatabaseHandshakeStore(env.queries)
	err := store.Save(context.Background(), sessionID, model.Handshake{
		State:        "S",
		CodeVerifier: "V",
		TenantID:     1,
		Platform:     config.PlatformLinkedIn,
		ExpiresAt:    time.Now().Add(time.Minute),
	})
	assert.NilError(t, err)
}

func TestConnectBegin(t *testing.T) {
	env := newTestEnv(t)

	authURL, err := env.connect.Begin(context.Background(), "session-1", 1)
	assert.NilError(t, err)

	parsed, err := url.Parse(authURL)
	assert.NilError(t, err)

	handshake, err := env.handshakes.Pull(context.Background(), "session-1")
	assert.NilError(t, err)
	assert.Equal(t, handshake.State, parsed.Query().Get("state"))
	assert.Equal(t, service.DeriveCodeChallenge(handshake.CodeVerifier), parsed.Query().Get("code_challenge"))
}

func TestConnectComplete(t *testing.T) {
	env := newTestEnv(t)
	saveHandshake(t, env, "session-1")

	integration, err := env.connect.Complete(context.Background(), service.CallbackParams{
		SessionID: "session-1",
		TenantID:  1,
		State:     "S",
		Code:      "CODE",
	})
	assert.NilError(t, err)

	assert.Equal(t, int64(1), integration.TenantID)
	assert.Equal(t, config.PlatformLinkedIn, integration.Platform)
	assert.Equal(t, "abc123", integration.PlatformUserID)
	assert.Equal(t, "Ada Lovelace", integration.DisplayName)
	assert.Equal(t, "ada-lovelace", integration.PlatformUsername)
	assert.Equal(t, "AT1", integration.AccessToken)
	assert.Equal(t, "RT1", integration.RefreshToken)
	assert.Assert(t, integration.IsActive)
	assert.DeepEqual(t, []string{"openid", "profile"}, integration.Scopes)

	// The verifier from the handshake was sent
	assert.Equal(t, "V", env.linkedin.tokenRequests[0].Get("code_verifier"))

	stored, err := env.integrations.List(context.Background(), 1)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(stored))
	assert.Equal(t, "abc123", stored[0].PlatformUserID)
	assert.Assert(t, stored[0].IsActive)

	events := *env.received
	assert.Equal(t, 1, len(events))
	assert.Equal(t, service.EventIntegrationConnected, events[0].Type)
	assert.Equal(t, "abc123", events[0].PlatformUserID)

	// The handshake is consumed, a replay fails
	_, err = env.connect.Complete(context.Background(), service.CallbackParams{
		SessionID: "session-1",
		TenantID:  1,
		State:     "S",
		Code:      "CODE",
	})
	assert.Assert(t, errors.Is(err, service.ErrHandshakeMismatch))
}

func TestConnectReconnectReactivates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	saveHandshake(t, env, "session-1")
	first, err := env.connect.Complete(ctx, service.CallbackParams{SessionID: "session-1", TenantID: 1, State: "S", Code: "CODE"})
	assert.NilError(t, err)

	assert.NilError(t, env.connect.Disconnect(ctx, 1, first.ID))

	disconnected, err := env.integrations.Get(ctx, first.ID)
	assert.NilError(t, err)
	assert.Assert(t, !disconnected.IsActive)

	// Reconnecting without a new refresh token keeps the stored one
	env.linkedin.tokenResponse = map[string]any{"access_token": "AT3", "expires_in": 3600}

	saveHandshake(t, env, "session-1")
	second, err := env.connect.Complete(ctx, service.CallbackParams{SessionID: "session-1", TenantID: 1, State: "S", Code: "CODE"})
	assert.NilError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Assert(t, second.IsActive)
	assert.Equal(t, "AT3", second.AccessToken)
	assert.Equal(t, "RT1", second.RefreshToken)

	// No scope in the response means the requested set was granted
	assert.DeepEqual(t, []string{"email", "openid", "profile", "w_member_social"}, second.Scopes)
}

func TestConnectScopesLimitedToRequested(t *testing.T) {
	env := newTestEnv(t)
	saveHandshake(t, env, "session-1")

	env.linkedin.tokenResponse = map[string]any{
		"access_token":  "AT1",
		"refresh_token": "RT1",
		"expires_in":    3600,
		"scope":         "openid,profile,r_organization_admin",
	}

	integration, err := env.connect.Complete(context.Background(), service.CallbackParams{
		SessionID: "session-1",
		TenantID:  1,
		State:     "S",
		Code:      "CODE",
	})
	assert.NilError(t, err)
	assert.DeepEqual(t, []string{"openid", "profile"}, integration.Scopes)

	stored, err := env.integrations.Get(context.Background(), integration.ID)
	assert.NilError(t, err)
	assert.DeepEqual(t, []string{"openid", "profile"}, stored.Scopes)
}

func TestConnectStateMismatch(t *testing.T) {
	env := newTestEnv(t)
	saveHandshake(t, env, "session-1")

	_, err := env.connect.Complete(context.Background(), service.CallbackParams{
		SessionID: "session-1",
		TenantID:  1,
		State:     "OTHER",
		Code:      "CODE",
	})
	assert.Assert(t, errors.Is(err, service.ErrHandshakeMismatch))
	assert.ErrorContains(t, err, "state does not match")
	assert.Equal(t, 0, env.linkedin.networkCalls())
}

func TestConnectTenantMismatch(t *testing.T) {
	env := newTestEnv(t)
	saveHandshake(t, env, "session-1")

	_, err := env.connect.Complete(context.Background(), service.CallbackParams{
		SessionID: "session-1",
		TenantID:  2,
		State:     "S",
		Code:      "CODE",
	})
	assert.Assert(t, errors.Is(err, service.ErrHandshakeMismatch))
	assert.ErrorContains(t, err, "tenant does not match")
	assert.Equal(t, 0, env.linkedin.networkCalls())
}

func TestConnectMissingCode(t *testing.T) {
	env := newTestEnv(t)
	saveHandshake(t, env, "session-1")

	_, err := env.connect.Complete(context.Background(), service.CallbackParams{
		SessionID: "session-1",
		TenantID:  1,
		State:     "S",
	})
	assert.Assert(t, errors.Is(err, service.ErrHandshakeMismatch))
	assert.Equal(t, 0, env.linkedin.networkCalls())
}

func TestConnectProviderRejection(t *testing.T) {
	env := newTestEnv(t)
	saveHandshake(t, env, "session-1")

	_, err := env.connect.Complete(context.Background(), service.CallbackParams{
		SessionID:        "session-1",
		TenantID:         1,
		Error:            "user_cancelled_authorize",
		ErrorDescription: "The user cancelled the authorization",
	})

	var rejection *service.ProviderRejectionError
	assert.Assert(t, errors.As(err, &rejection))
	assert.Equal(t, "user_cancelled_authorize", rejection.Code)
	assert.Equal(t, 0, env.linkedin.networkCalls())

	// The handshake was discarded
	handshake, err := env.handshakes.Pull(context.Background(), "session-1")
	assert.NilError(t, err)
	assert.Assert(t, handshake == nil)
}

func TestConnectExchangeFailure(t *testing.T) {
	env := newTestEnv(t)
	env.linkedin.tokenStatus = http.StatusBadRequest
	saveHandshake(t, env, "session-1")

	_, err := env.connect.Complete(context.Background(), service.CallbackParams{
		SessionID: "session-1",
		TenantID:  1,
		State:     "S",
		Code:      "CODE",
	})

	var exchangeErr *service.TokenExchangeError
	assert.Assert(t, errors.As(err, &exchangeErr))
	assert.Equal(t, http.StatusBadRequest, exchangeErr.Status)

	integrations, err := env.integrations.List(context.Background(), 1)
	assert.NilError(t, err)
	assert.Equal(t, 0, len(integrations))
}

func TestDisconnectOtherTenant(t *testing.T) {
	env := newTestEnv(t)
	integration := seedIntegration(t, env, nil, "RT0")

	err := env.connect.Disconnect(context.Background(), 2, integration.ID)
	assert.Assert(t, errors.Is(err, service.ErrIntegrationNotFound))

	stored, err := env.integrations.Get(context.Background(), integration.ID)
	assert.NilError(t, err)
	assert.Assert(t, stored.IsActive)
}
