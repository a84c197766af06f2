package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/service"

	"gotest.tools/v3/assert"
)

func TestContentCreateAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.content.Create(ctx, 1, service.CreateContentParams{Title: "Launch", Body: "We shipped"})
	assert.NilError(t, err)
	assert.Equal(t, model.ContentStatusDraft, created.Status)

	_, err = env.content.Create(ctx, 1, service.CreateContentParams{})
	assert.ErrorContains(t, err, "title or a body")

	media, err := env.content.AttachMedia(ctx, 1, created.ID, service.AttachMediaParams{
		URL:               "https://example.com/a.png",
		PlatformReference: "urn:li:image:1",
	})
	assert.NilError(t, err)
	assert.Equal(t, "image", media.Kind)

	contents, err := env.content.List(ctx, 1)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(contents))
	assert.Equal(t, 1, len(contents[0].Media))
	assert.Equal(t, "urn:li:image:1", contents[0].Media[0].PlatformReference)

	// Other tenants see nothing
	contents, err = env.content.List(ctx, 2)
	assert.NilError(t, err)
	assert.Equal(t, 0, len(contents))

	_, err = env.content.Get(ctx, 2, created.ID)
	assert.Assert(t, errors.Is(err, service.ErrContentNotFound))

	_, err = env.content.AttachMedia(ctx, 2, created.ID, service.AttachMediaParams{URL: "https://example.com/b.png"})
	assert.Assert(t, errors.Is(err, service.ErrContentNotFound))
}

func TestContentPublishUpdatesStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	future := time.Now().Add(time.Hour)
	integration := seedIntegration(t, env, &future, "RT0")

	created, err := env.content.Create(ctx, 1, service.CreateContentParams{Body: "Hello"})
	assert.NilError(t, err)

	updated, result, err := env.content.Publish(ctx, 1, created.ID, integration.ID)
	assert.NilError(t, err)
	assert.Equal(t, "urn:li:share:7000", result.PlatformPostID)
	assert.Equal(t, model.ContentStatusPublished, updated.Status)
	assert.Equal(t, "urn:li:share:7000", updated.PlatformPostID)
	assert.Assert(t, updated.PublishedAt != nil)

	// A failure is recorded on the item
	env.linkedin.postStatuses = []int{http.StatusUnprocessableEntity}

	failed, err := env.content.Create(ctx, 1, service.CreateContentParams{Body: "Again"})
	assert.NilError(t, err)

	updated, _, err = env.content.Publish(ctx, 1, failed.ID, integration.ID)
	assert.ErrorContains(t, err, "status=422")
	assert.Equal(t, model.ContentStatusFailed, updated.Status)
	assert.Assert(t, updated.LastError != "")
}

func TestContentPublishUnknownIntegration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.content.Create(ctx, 1, service.CreateContentParams{Body: "Hello"})
	assert.NilError(t, err)

	_, _, err = env.content.Publish(ctx, 1, created.ID, 99)
	assert.Assert(t, errors.Is(err, service.ErrIntegrationNotFound))
	assert.Equal(t, 0, env.linkedin.postCalls())
}
