package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/utils"

	"golang.org/x/oauth2"
)

type TokenServiceConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	Retry        RetryPolicy
}

type TokenService struct {
	config     TokenServiceConfig
	oauth      oauth2.Config
	httpClient *http.Client
}

func NewTokenService(config TokenServiceConfig, httpClient *http.Client) *TokenService {
	return &TokenService{
		config: config,
		oauth: oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       config.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   config.AuthURL,
				TokenURL:  config.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: httpClient,
	}
}

func (ts *TokenService) RequestedScopes() []string {
	return utils.NormalizeList(ts.config.Scopes)
}

// AuthCodeURL builds the authorization redirect with the S256 challenge of verifier
func (ts *TokenService) AuthCodeURL(state string, verifier string) string {
	return ts.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", DeriveCodeChallenge(verifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (ts *TokenService) ExchangeCode(ctx context.Context, code string, verifier string) (model.TokenSet, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, ts.httpClient)

	// 4xx means the code was consumed or rejected, only transport and 5xx
	// failures are sent again
	token, err := retryTransient(ctx, ts.config.Retry, func() (*oauth2.Token, error) {
		return ts.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	}, isTransientTokenError)

	if err != nil {
		return model.TokenSet{}, newTokenExchangeError(err)
	}

	return tokenSetFromToken(token), nil
}

// RefreshToken trades a refresh token for a new access token. The old refresh
// token is carried over when the provider does not rotate it.
func (ts *TokenService) RefreshToken(ctx context.Context, refreshToken string) (model.TokenSet, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, ts.httpClient)

	token, err := retryTransient(ctx, ts.config.Retry, func() (*oauth2.Token, error) {
		return ts.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	}, isTransientTokenError)

	if err != nil {
		return model.TokenSet{}, newTokenExchangeError(err)
	}

	return tokenSetFromToken(token), nil
}

func tokenSetFromToken(token *oauth2.Token) model.TokenSet {
	set := model.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scopes:       utils.ParseScopes(token.Extra("scope")),
	}

	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		set.ExpiresAt = &expiry
	}

	return set
}

func isTransientTokenError(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= http.StatusInternalServerError
	}
	return isNetworkError(err)
}

func newTokenExchangeError(err error) *TokenExchangeError {
	exchangeErr := &TokenExchangeError{Err: err}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		exchangeErr.Body = string(retrieveErr.Body)
		if retrieveErr.Response != nil {
			exchangeErr.Status = retrieveErr.Response.StatusCode
		}
	}

	return exchangeErr
}
