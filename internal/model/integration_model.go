package model

import (
	"encoding/json"
	"time"
)

type Integration struct {
	ID               int64
	TenantID         int64
	Platform         string
	PlatformUserID   string
	PlatformUsername string
	DisplayName      string
	AccessToken      string
	RefreshToken     string
	ExpiresAt        *time.Time
	Scopes           []string
	Profile          json.RawMessage
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Expired reports whether the token has a known expiry that is not in the future
func (i Integration) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !i.ExpiresAt.After(now)
}

type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	Scopes       []string
}

type Profile struct {
	PlatformUserID string
	DisplayName    string
	Username       string
	PictureURL     *string
	Raw            json.RawMessage
}
