package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/tinypost/tinypost/internal/service"

	"gotest.tools/v3/assert"
)

func TestAuthCodeURL(t *testing.T) {
	env := newTestEnv(t)

	authURL := env.tokens.AuthCodeURL("S", "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")

	parsed, err := url.Parse(authURL)
	assert.NilError(t, err)
	assert.Equal(t, "/oauth/v2/authorization", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, testClientID, query.Get("client_id"))
	assert.Equal(t, testRedirectURL, query.Get("redirect_uri"))
	assert.Equal(t, "S", query.Get("state"))
	assert.Equal(t, "openid profile email w_member_social", query.Get("scope"))
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", query.Get("code_challenge"))
	assert.Equal(t, "S256", query.Get("code_challenge_method"))
}

func TestExchangeCode(t *testing.T) {
	env := newTestEnv(t)

	env.linkedin.tokenResponse = map[string]any{
		"access_token": "AT1",
		"expires_in":   3600,
		"scope":        "openid profile",
	}

	before := time.Now()
	tokens, err := env.tokens.ExchangeCode(context.Background(), "CODE", "VERIFIER")
	assert.NilError(t, err)

	assert.Equal(t, "AT1", tokens.AccessToken)
	assert.Equal(t, "", tokens.RefreshToken)
	assert.DeepEqual(t, []string{"openid", "profile"}, tokens.Scopes)
	assert.Assert(t, tokens.ExpiresAt != nil)
	assert.Assert(t, !tokens.ExpiresAt.Before(before.Add(3599*time.Second)))
	assert.Assert(t, !tokens.ExpiresAt.After(time.Now().Add(3601*time.Second)))

	// Wire format
	assert.Equal(t, 1, env.linkedin.tokenCalls())
	form := env.linkedin.tokenRequests[0]
	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "CODE", form.Get("code"))
	assert.Equal(t, testRedirectURL, form.Get("redirect_uri"))
	assert.Equal(t, "VERIFIER", form.Get("code_verifier"))
	assert.Equal(t, "", form.Get("client_secret"))

	basic := "Basic " + base64.StdEncoding.EncodeToString([]byte(testClientID+":"+testClientSecret))
	assert.Equal(t, basic, env.linkedin.tokenAuth[0])
}

func TestExchangeCodeScopeForms(t *testing.T) {
	env := newTestEnv(t)

	// JSON array
	env.linkedin.tokenResponse = map[string]any{
		"access_token": "AT1",
		"scope":        []string{"w_member_social", "openid"},
	}

	tokens, err := env.tokens.ExchangeCode(context.Background(), "CODE", "VERIFIER")
	assert.NilError(t, err)
	assert.DeepEqual(t, []string{"openid", "w_member_social"}, tokens.Scopes)
	assert.Assert(t, tokens.ExpiresAt == nil)

	// Missing
	env.linkedin.tokenResponse = map[string]any{
		"access_token": "AT1",
	}

	tokens, err = env.tokens.ExchangeCode(context.Background(), "CODE", "VERIFIER")
	assert.NilError(t, err)
	assert.DeepEqual(t, []string{}, tokens.Scopes)
}

func TestExchangeCodeRetries(t *testing.T) {
	env := newTestEnv(t)

	// 5xx is retried twice
	env.linkedin.tokenStatus = http.StatusBadGateway

	_, err := env.tokens.ExchangeCode(context.Background(), "CODE", "VERIFIER")
	assert.ErrorContains(t, err, "token exchange failed")

	var exchangeErr *service.TokenExchangeError
	assert.Assert(t, errors.As(err, &exchangeErr))
	assert.Equal(t, http.StatusBadGateway, exchangeErr.Status)
	assert.Equal(t, 3, env.linkedin.tokenCalls())

	// Every attempt carries the same code and verifier
	for _, form := range env.linkedin.tokenRequests {
		assert.Equal(t, "CODE", form.Get("code"))
		assert.Equal(t, "VERIFIER", form.Get("code_verifier"))
	}

	// 4xx means the code is gone, no second attempt
	env.linkedin.tokenRequests = nil
	env.linkedin.tokenStatus = http.StatusBadRequest

	_, err = env.tokens.ExchangeCode(context.Background(), "CODE", "VERIFIER")
	assert.Assert(t, errors.As(err, &exchangeErr))
	assert.Equal(t, http.StatusBadRequest, exchangeErr.Status)
	assert.Equal(t, 1, env.linkedin.tokenCalls())
}

func TestExchangeCodeTimeoutRetried(t *testing.T) {
	env := newTestEnv(t)
	env.linkedin.tokenDelay = 200 * time.Millisecond

	tokens := service.NewTokenService(service.TokenServiceConfig{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		RedirectURL:  testRedirectURL,
		AuthURL:      env.linkedin.server.URL + "/oauth/v2/authorization",
		TokenURL:     env.linkedin.server.URL + "/oauth/v2/accessToken",
		Retry:        service.RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond},
	}, &http.Client{Timeout: 50 * time.Millisecond})

	_, err := tokens.ExchangeCode(context.Background(), "CODE", "VERIFIER")
	assert.ErrorContains(t, err, "Client.Timeout exceeded")
	assert.Equal(t, 3, env.linkedin.tokenCalls())
}

func TestRefreshToken(t *testing.T) {
	env := newTestEnv(t)

	env.linkedin.tokenResponse = map[string]any{
		"access_token": "AT2",
		"expires_in":   3600,
	}

	tokens, err := env.tokens.RefreshToken(context.Background(), "RT1")
	assert.NilError(t, err)
	assert.Equal(t, "AT2", tokens.AccessToken)

	// Not rotated, the old one is kept
	assert.Equal(t, "RT1", tokens.RefreshToken)

	form := env.linkedin.tokenRequests[0]
	assert.Equal(t, "refresh_token", form.Get("grant_type"))
	assert.Equal(t, "RT1", form.Get("refresh_token"))
}

func TestRefreshTokenRetries(t *testing.T) {
	env := newTestEnv(t)

	// 5xx is retried twice
	env.linkedin.tokenStatus = http.StatusBadGateway

	_, err := env.tokens.RefreshToken(context.Background(), "RT1")
	assert.ErrorContains(t, err, "status=502")
	assert.Equal(t, 3, env.linkedin.tokenCalls())

	// 4xx is not
	env.linkedin.tokenRequests = nil
	env.linkedin.tokenStatus = http.StatusBadRequest

	_, err = env.tokens.RefreshToken(context.Background(), "RT1")
	assert.ErrorContains(t, err, "status=400")
	assert.Equal(t, 1, env.linkedin.tokenCalls())
}
