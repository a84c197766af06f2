package model

import "time"

type Handshake struct {
	State        string    `json:"state"`
	CodeVerifier string    `json:"code_verifier"`
	TenantID     int64     `json:"tenant_id"`
	Platform     string    `json:"platform"`
	ExpiresAt    time.Time `json:"expires_at"`
}
