package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gotest.tools/v3/assert"
)

func TestPublishContent(t *testing.T) {
	var gotTenant, gotPath string
	var gotBody map[string]int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = r.Header.Get("Remote-Tenant")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		if r.Header.Get("Remote-User") == "" {
			w.WriteHeader(401)
			_, _ = w.Write([]byte(`{"status":401,"message":"Unauthorized"}`))
			return
		}

		if gotBody["integrationId"] == 9 {
			w.WriteHeader(409)
			_, _ = w.Write([]byte(`{"status":409,"message":"Integration Disconnected"}`))
			return
		}

		_, _ = w.Write([]byte(`{"status":200,"message":"Published","platformPostId":"urn:li:share:1"}`))
	}))
	t.Cleanup(server.Close)

	cfg := *NewPublishConfig()
	cfg.AppURL = server.URL + "/"
	cfg.Tenant = 4
	cfg.Content = 12
	cfg.Integration = 3

	result, err := publishContent(server.Client(), cfg)
	assert.NilError(t, err)
	assert.Equal(t, "urn:li:share:1", result.PlatformPostID)
	assert.Equal(t, "4", gotTenant)
	assert.Equal(t, "/api/content/12/publish", gotPath)
	assert.Equal(t, int64(3), gotBody["integrationId"])

	cfg.Integration = 9

	_, err = publishContent(server.Client(), cfg)
	assert.ErrorContains(t, err, "publish failed with status 409: Integration Disconnected")
}

func TestCheckHealth(t *testing.T) {
	healthy := true

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		if !healthy {
			w.WriteHeader(503)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","message":"Healthy"}`))
	}))
	t.Cleanup(server.Close)

	health, err := checkHealth(server.Client(), server.URL)
	assert.NilError(t, err)
	assert.Equal(t, "ok", health.Status)

	healthy = false

	_, err = checkHealth(server.Client(), server.URL)
	assert.ErrorContains(t, err, "service is not healthy")
}

func TestValidateID(t *testing.T) {
	assert.NilError(t, validateID("12"))
	assert.ErrorContains(t, validateID("0"), "positive")
	assert.ErrorContains(t, validateID("abc"), "positive")
	assert.Equal(t, "", formatID(0))
	assert.Equal(t, "7", formatID(7))
}
