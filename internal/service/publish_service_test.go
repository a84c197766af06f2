package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/service"

	"gotest.tools/v3/assert"
)

func decodePayload(t *testing.T, payload []byte) map[string]any {
	var decoded map[string]any
	assert.NilError(t, json.Unmarshal(payload, &decoded))
	return decoded
}

func TestBuildPostPayloadMedia(t *testing.T) {
	integration := model.Integration{PlatformUserID: "abc123"}

	// Zero media, no content block
	payload, err := service.BuildPostPayload(integration, model.Content{Body: "Hello"})
	assert.NilError(t, err)

	decoded := decodePayload(t, payload)
	_, hasContent := decoded["content"]
	assert.Assert(t, !hasContent)
	assert.Equal(t, "urn:li:person:abc123", decoded["author"])
	assert.Equal(t, "Hello", decoded["commentary"])
	assert.Equal(t, "PUBLIC", decoded["visibility"])
	assert.Equal(t, "PUBLISHED", decoded["lifecycleState"])
	assert.Equal(t, false, decoded["isReshareDisabledByAuthor"])
	assert.Equal(t, "MAIN_FEED", decoded["distribution"].(map[string]any)["feedDistribution"])

	// One media, single media form
	payload, err = service.BuildPostPayload(integration, model.Content{
		Title: "Launch",
		Body:  "Hello",
		Media: []model.Media{
			{PlatformReference: "urn:li:image:1"},
			{URL: "https://example.com/not-uploaded.png"},
		},
	})
	assert.NilError(t, err)

	content := decodePayload(t, payload)["content"].(map[string]any)
	media := content["media"].(map[string]any)
	assert.Equal(t, "urn:li:image:1", media["id"])
	_, hasMulti := content["multiImage"]
	assert.Assert(t, !hasMulti)

	// Two media, multi image form
	payload, err = service.BuildPostPayload(integration, model.Content{
		Body: "Hello",
		Media: []model.Media{
			{PlatformReference: "urn:li:image:1"},
			{PlatformReference: "urn:li:image:2"},
		},
	})
	assert.NilError(t, err)

	content = decodePayload(t, payload)["content"].(map[string]any)
	_, hasMedia := content["media"]
	assert.Assert(t, !hasMedia)
	images := content["multiImage"].(map[string]any)["images"].([]any)
	assert.Equal(t, 2, len(images))
	assert.Equal(t, "urn:li:image:2", images[1].(map[string]any)["id"])
}

func TestBuildPostPayloadTruncates(t *testing.T) {
	payload, err := service.BuildPostPayload(model.Integration{PlatformUserID: "abc123"}, model.Content{
		Body: strings.Repeat("a", 4000),
	})
	assert.NilError(t, err)

	commentary := decodePayload(t, payload)["commentary"].(string)
	assert.Equal(t, 3000, utf8.RuneCountInString(commentary))
	assert.Assert(t, strings.HasSuffix(commentary, "..."))

	// Multi byte text is cut by characters
	payload, err = service.BuildPostPayload(model.Integration{PlatformUserID: "abc123"}, model.Content{
		Body: strings.Repeat("é", 4000),
	})
	assert.NilError(t, err)

	commentary = decodePayload(t, payload)["commentary"].(string)
	assert.Equal(t, 3000, utf8.RuneCountInString(commentary))
}

func TestAuthorURN(t *testing.T) {
	assert.Equal(t, "urn:li:person:abc123", service.AuthorURN("abc123"))
	assert.Equal(t, "urn:li:organization:42", service.AuthorURN("urn:li:organization:42"))
}

func TestPublish(t *testing.T) {
	env := newTestEnv(t)

	future := time.Now().Add(time.Hour)
	integration := seedIntegration(t, env, &future, "RT0")

	result, err := env.publisher.Publish(context.Background(), integration, model.Content{Body: "Hello"})
	assert.NilError(t, err)
	assert.Equal(t, "urn:li:share:7000", result.PlatformPostID)
	assert.Equal(t, "urn:li:person:abc123", decodePayload(t, result.Payload)["author"])

	assert.Equal(t, 1, env.linkedin.postCalls())
	req := env.linkedin.postRequests[0]
	assert.Equal(t, "Bearer AT0", req.Header.Get("Authorization"))
	assert.Equal(t, "202401", req.Header.Get("LinkedIn-Version"))
	assert.Equal(t, "2.0.0", req.Header.Get("X-Restli-Protocol-Version"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, string(result.Payload), string(env.linkedin.postBodies[0]))

	events := *env.received
	assert.Equal(t, 1, len(events))
	assert.Equal(t, service.EventContentPublished, events[0].Type)
	assert.Equal(t, "urn:li:share:7000", events[0].PlatformPostID)
	assert.Equal(t, string(env.linkedin.postBodies[0]), string(events[0].Payload))
}

func TestPublishRefreshesFirst(t *testing.T) {
	env := newTestEnv(t)

	past := time.Now().Add(-time.Minute)
	integration := seedIntegration(t, env, &past, "RT0")

	_, err := env.publisher.Publish(context.Background(), integration, model.Content{Body: "Hello"})
	assert.NilError(t, err)

	assert.Equal(t, 1, env.linkedin.tokenCalls())
	assert.Equal(t, "Bearer AT1", env.linkedin.postRequests[0].Header.Get("Authorization"))
}

func TestPublishRetries(t *testing.T) {
	env := newTestEnv(t)

	future := time.Now().Add(time.Hour)
	integration := seedIntegration(t, env, &future, "RT0")

	// 500 is retried twice then fails
	env.linkedin.postStatuses = []int{http.StatusInternalServerError}

	_, err := env.publisher.Publish(context.Background(), integration, model.Content{Body: "Hello"})

	var publishErr *service.PublishError
	assert.Assert(t, errors.As(err, &publishErr))
	assert.Equal(t, http.StatusInternalServerError, publishErr.Status)
	assert.Equal(t, 3, env.linkedin.postCalls())

	events := *env.received
	assert.Equal(t, service.EventContentPublishFailed, events[len(events)-1].Type)

	// 400 is not retried
	env.linkedin.postRequests = nil
	env.linkedin.postBodies = nil
	env.linkedin.postStatuses = []int{http.StatusBadRequest}

	_, err = env.publisher.Publish(context.Background(), integration, model.Content{Body: "Hello"})
	assert.Assert(t, errors.As(err, &publishErr))
	assert.Equal(t, http.StatusBadRequest, publishErr.Status)
	assert.Equal(t, 1, env.linkedin.postCalls())

	// A transient failure followed by success
	env.linkedin.postRequests = nil
	env.linkedin.postBodies = nil
	env.linkedin.postStatuses = []int{http.StatusServiceUnavailable, http.StatusCreated}

	result, err := env.publisher.Publish(context.Background(), integration, model.Content{Body: "Hello"})
	assert.NilError(t, err)
	assert.Equal(t, "urn:li:share:7000", result.PlatformPostID)
	assert.Equal(t, 2, env.linkedin.postCalls())
}

func TestPublishTimeoutRetried(t *testing.T) {
	env := newTestEnv(t)
	env.linkedin.postDelay = 200 * time.Millisecond

	future := time.Now().Add(time.Hour)
	integration := seedIntegration(t, env, &future, "RT0")

	publisher := service.NewPublishService(service.PublishServiceConfig{
		APIURL:     env.linkedin.server.URL,
		APIVersion: "202401",
		Retry:      service.RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond},
	}, &http.Client{Timeout: 50 * time.Millisecond}, env.refresh, env.events)

	_, err := publisher.Publish(context.Background(), integration, model.Content{Body: "Hello"})

	var publishErr *service.PublishError
	assert.Assert(t, errors.As(err, &publishErr))
	assert.ErrorContains(t, err, "Client.Timeout exceeded")
	assert.Equal(t, 3, env.linkedin.postCalls())

	// Recovers once the API answers in time
	env.linkedin.postDelay = 0

	result, err := publisher.Publish(context.Background(), integration, model.Content{Body: "Hello"})
	assert.NilError(t, err)
	assert.Equal(t, "urn:li:share:7000", result.PlatformPostID)
}

func TestPublishInactive(t *testing.T) {
	env := newTestEnv(t)

	future := time.Now().Add(time.Hour)
	integration := seedIntegration(t, env, &future, "RT0")
	integration.IsActive = false

	_, err := env.publisher.Publish(context.Background(), integration, model.Content{Body: "Hello"})
	assert.Assert(t, errors.Is(err, service.ErrIntegrationInactive))
	assert.Equal(t, 0, env.linkedin.postCalls())
}
