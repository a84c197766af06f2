package service_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/tinypost/tinypost/internal/config"
	"github.com/tinypost/tinypost/internal/database"
	"github.com/tinypost/tinypost/internal/metrics"
	"github.com/tinypost/tinypost/internal/repository"
	"github.com/tinypost/tinypost/internal/service"
	"github.com/tinypost/tinypost/internal/utils"
	"github.com/tinypost/tinypost/internal/utils/tlog"

	"gotest.tools/v3/assert"
)

const (
	testClientID     = "client-id"
	testClientSecret = "client-secret"
	testRedirectURL  = "http://localhost:3000/api/integrations/linkedin/callback"
)

// fakeLinkedIn serves the OAuth, profile and posts endpoints
type fakeLinkedIn struct {
	server *httptest.Server

	mu             sync.Mutex
	tokenStatus    int
	tokenDelay     time.Duration
	tokenResponse  map[string]any
	tokenRequests  []url.Values
	tokenAuth      []string
	userinfoStatus int
	userinfo       map[string]any
	meStatus       int
	me             map[string]any
	profileCalls   int
	postStatuses   []int
	postDelay      time.Duration
	postID         string
	postRequests   []*http.Request
	postBodies     [][]byte
}

func newFakeLinkedIn(t *testing.T) *fakeLinkedIn {
	fake := &fakeLinkedIn{
		tokenStatus: http.StatusOK,
		tokenResponse: map[string]any{
			"access_token":  "AT1",
			"refresh_token": "RT1",
			"expires_in":    3600,
			"scope":         "openid profile",
		},
		userinfoStatus: http.StatusOK,
		userinfo: map[string]any{
			"sub":         "abc123",
			"name":        "Ada Lovelace",
			"given_name":  "Ada",
			"family_name": "Lovelace",
			"picture":     "https://media.example.com/ada.jpg",
			"email":       "ada@example.com",
		},
		meStatus: http.StatusOK,
		me: map[string]any{
			"id":                 "abc123",
			"localizedFirstName": "Ada",
			"localizedLastName":  "Lovelace",
			"vanityName":         "ada-lovelace",
		},
		postID: "urn:li:share:7000",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/v2/accessToken", fake.handleToken)
	mux.HandleFunc("GET /v2/userinfo", fake.handleUserinfo)
	mux.HandleFunc("GET /v2/me", fake.handleMe)
	mux.HandleFunc("POST /rest/posts", fake.handlePosts)

	fake.server = httptest.NewServer(mux)
	t.Cleanup(fake.server.Close)

	return fake
}

func (f *fakeLinkedIn) handleToken(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	f.mu.Lock()
	f.tokenRequests = append(f.tokenRequests, r.PostForm)
	f.tokenAuth = append(f.tokenAuth, r.Header.Get("Authorization"))
	delay := f.tokenDelay
	f.mu.Unlock()

	if !stall(r, delay) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.tokenStatus)

	if f.tokenStatus != http.StatusOK {
		_, _ = w.Write([]byte(`{"error":"invalid_request","error_description":"bad code"}`))
		return
	}

	_ = json.NewEncoder(w).Encode(f.tokenResponse)
}

func (f *fakeLinkedIn) handleUserinfo(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.profileCalls++
	writeJSON(w, f.userinfoStatus, f.userinfo)
}

func (f *fakeLinkedIn) handleMe(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.profileCalls++
	writeJSON(w, f.meStatus, f.me)
}

func (f *fakeLinkedIn) handlePosts(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.postRequests = append(f.postRequests, r)
	f.postBodies = append(f.postBodies, body)
	delay := f.postDelay
	f.mu.Unlock()

	if !stall(r, delay) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	status := http.StatusCreated
	if attempt := len(f.postRequests) - 1; attempt < len(f.postStatuses) {
		status = f.postStatuses[attempt]
	} else if len(f.postStatuses) > 0 {
		status = f.postStatuses[len(f.postStatuses)-1]
	}

	if status == http.StatusCreated {
		w.Header().Set("x-restli-id", f.postID)
	}
	w.WriteHeader(status)
}

func (f *fakeLinkedIn) tokenCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokenRequests)
}

func (f *fakeLinkedIn) postCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.postRequests)
}

func (f *fakeLinkedIn) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokenRequests) + f.profileCalls + len(f.postRequests)
}

// stall holds the response for delay. It reports false when the client gave
// up first.
func stall(r *http.Request, delay time.Duration) bool {
	if delay <= 0 {
		return true
	}

	select {
	case <-time.After(delay):
		return true
	case <-r.Context().Done():
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= 200 && status < 300 {
		_ = json.NewEncoder(w).Encode(body)
		return
	}
	_, _ = w.Write([]byte(`{"message":"failure"}`))
}

type testEnv struct {
	linkedin     *fakeLinkedIn
	queries      *repository.Queries
	events       *service.EventBroker
	received     *[]service.Event
	handshakes   *service.HandshakeService
	tokens       *service.TokenService
	profiles     *service.ProfileService
	integrations *service.IntegrationService
	refresh      *service.RefreshService
	publisher    *service.PublishService
	connect      *service.ConnectService
	content      *service.ContentService
}

func newTestEnv(t *testing.T) *testEnv {
	tlog.NewSimpleLogger().Init()

	linkedin := newFakeLinkedIn(t)

	db, err := database.Open(database.MemoryPath)
	assert.NilError(t, err)
	t.Cleanup(func() { db.Close() })

	queries := repository.New(db)

	cipher, err := utils.NewTokenCipher(base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32)))
	assert.NilError(t, err)

	retry := service.RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond}
	httpClient := &http.Client{Timeout: 5 * time.Second}

	received := make([]service.Event, 0)
	var receivedMu sync.Mutex

	events := service.NewEventBroker()
	events.Subscribe(service.NewContentStatusListener(queries))
	events.Subscribe(service.EventListenerFunc(func(_ context.Context, event service.Event) {
		receivedMu.Lock()
		defer receivedMu.Unlock()
		received = append(received, event)
	}))

	handshakes := service.NewHandshakeService(service.HandshakeServiceConfig{
		Platform: config.PlatformLinkedIn,
		TTL:      10 * time.Minute,
	}, service.NewDatabaseHandshakeStore(queries))

	tokens := service.NewTokenService(service.TokenServiceConfig{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		RedirectURL:  testRedirectURL,
		Scopes:       []string{"openid", "profile", "email", "w_member_social"},
		AuthURL:      linkedin.server.URL + "/oauth/v2/authorization",
		TokenURL:     linkedin.server.URL + "/oauth/v2/accessToken",
		Retry:        retry,
	}, httpClient)

	profiles := service.NewProfileService(service.ProfileServiceConfig{
		APIURL: linkedin.server.URL,
		Retry:  retry,
	}, httpClient)

	integrations := service.NewIntegrationService(queries, cipher)
	refresh := service.NewRefreshService(tokens, integrations, metrics.NopRecorder{})

	publisher := service.NewPublishService(service.PublishServiceConfig{
		APIURL:     linkedin.server.URL,
		APIVersion: "202401",
		Retry:      retry,
	}, httpClient, refresh, events)

	connect := service.NewConnectService(config.PlatformLinkedIn, handshakes, tokens, profiles, integrations, events)
	content := service.NewContentService(queries, integrations, publisher)

	return &testEnv{
		linkedin:     linkedin,
		queries:      queries,
		events:       events,
		received:     &received,
		handshakes:   handshakes,
		tokens:       tokens,
		profiles:     profiles,
		integrations: integrations,
		refresh:      refresh,
		publisher:    publisher,
		connect:      connect,
		content:      content,
	}
}
