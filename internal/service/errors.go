package service

import (
	"errors"
	"fmt"
)

var (
	ErrHandshakeMismatch   = errors.New("oauth handshake mismatch")
	ErrIntegrationNotFound = errors.New("integration not found")
	ErrIntegrationInactive = errors.New("integration is not active")
	ErrContentNotFound     = errors.New("content not found")
	ErrSourceNotFound      = errors.New("source not found")
)

// ProviderRejectionError is returned when the user declined the authorization
type ProviderRejectionError struct {
	Code        string
	Description string
}

func (e *ProviderRejectionError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("authorization rejected by provider: %s", e.Code)
	}
	return fmt.Sprintf("authorization rejected by provider: %s: %s", e.Code, e.Description)
}

type TokenExchangeError struct {
	Status int
	Body   string
	Err    error
}

func (e *TokenExchangeError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("token exchange failed: %v", e.Err)
	}
	return fmt.Sprintf("token exchange failed: status=%d: %v", e.Status, e.Err)
}

func (e *TokenExchangeError) Unwrap() error {
	return e.Err
}

type ProfileFetchError struct {
	Status int
	Body   string
	Err    error
}

func (e *ProfileFetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("profile fetch failed: %v", e.Err)
	}
	return fmt.Sprintf("profile fetch failed: status=%d", e.Status)
}

func (e *ProfileFetchError) Unwrap() error {
	return e.Err
}

type PublishError struct {
	Status int
	Body   string
	Err    error
}

func (e *PublishError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("publish failed: status=%d: %s", e.Status, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("publish failed: %v", e.Err)
	default:
		return "publish failed"
	}
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
