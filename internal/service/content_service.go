package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/repository"
)

type CreateContentParams struct {
	Title string
	Body  string
	Link  string
}

type AttachMediaParams struct {
	URL               string
	Kind              string
	PlatformReference string
}

type ContentService struct {
	queries      *repository.Queries
	integrations *IntegrationService
	publisher    *PublishService
	now          func() time.Time
}

func NewContentService(queries *repository.Queries, integrations *IntegrationService, publisher *PublishService) *ContentService {
	return &ContentService{
		queries:      queries,
		integrations: integrations,
		publisher:    publisher,
		now:          time.Now,
	}
}

func (cs *ContentService) Create(ctx context.Context, tenantID int64, params CreateContentParams) (model.Content, error) {
	if strings.TrimSpace(params.Title) == "" && strings.TrimSpace(params.Body) == "" {
		return model.Content{}, errors.New("content needs a title or a body")
	}

	now := cs.now().Unix()

	row, err := cs.queries.CreateContentItem(ctx, repository.CreateContentItemParams{
		TenantID:  tenantID,
		Title:     params.Title,
		Body:      params.Body,
		Link:      params.Link,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.Content{}, fmt.Errorf("create content: %w", err)
	}

	return contentFromRow(row, nil), nil
}

func (cs *ContentService) Get(ctx context.Context, tenantID int64, id int64) (model.Content, error) {
	row, err := cs.queries.GetTenantContentItem(ctx, repository.GetTenantContentItemParams{
		ID:       id,
		TenantID: tenantID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Content{}, ErrContentNotFound
		}
		return model.Content{}, err
	}

	media, err := cs.queries.ListContentMedia(ctx, row.ID)
	if err != nil {
		return model.Content{}, fmt.Errorf("list media: %w", err)
	}

	return contentFromRow(row, media), nil
}

func (cs *ContentService) List(ctx context.Context, tenantID int64) ([]model.Content, error) {
	rows, err := cs.queries.ListTenantContentItems(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	contents := make([]model.Content, 0, len(rows))
	for _, row := range rows {
		media, err := cs.queries.ListContentMedia(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("list media: %w", err)
		}
		contents = append(contents, contentFromRow(row, media))
	}

	return contents, nil
}

func (cs *ContentService) AttachMedia(ctx context.Context, tenantID int64, contentID int64, params AttachMediaParams) (model.Media, error) {
	if _, err := cs.Get(ctx, tenantID, contentID); err != nil {
		return model.Media{}, err
	}

	kind := params.Kind
	if kind == "" {
		kind = "image"
	}

	row, err := cs.queries.CreateMediaAsset(ctx, repository.CreateMediaAssetParams{
		ContentID:         contentID,
		Url:               params.URL,
		Kind:              kind,
		PlatformReference: params.PlatformReference,
		CreatedAt:         cs.now().Unix(),
	})
	if err != nil {
		return model.Media{}, fmt.Errorf("create media: %w", err)
	}

	return mediaFromRow(row), nil
}

// Publish posts the tenant's content through one of its integrations and
// returns the content with its updated status.
func (cs *ContentService) Publish(ctx context.Context, tenantID int64, contentID int64, integrationID int64) (model.Content, model.PublishResult, error) {
	content, err := cs.Get(ctx, tenantID, contentID)
	if err != nil {
		return model.Content{}, model.PublishResult{}, err
	}

	integration, err := cs.integrations.GetForTenant(ctx, tenantID, integrationID)
	if err != nil {
		return model.Content{}, model.PublishResult{}, err
	}

	result, publishErr := cs.publisher.Publish(ctx, integration, content)

	updated, err := cs.Get(ctx, tenantID, contentID)
	if err != nil {
		return model.Content{}, model.PublishResult{}, err
	}

	return updated, result, publishErr
}

func contentFromRow(row repository.ContentItem, media []repository.MediaAsset) model.Content {
	content := model.Content{
		ID:             row.ID,
		TenantID:       row.TenantID,
		Title:          row.Title,
		Body:           row.Body,
		Link:           row.Link,
		Status:         row.Status,
		PlatformPostID: row.PlatformPostID,
		LastError:      row.LastError,
		PublishedAt:    timeFromNull(row.PublishedAt),
		Media:          make([]model.Media, 0, len(media)),
	}

	if row.SourceID.Valid {
		sourceID := row.SourceID.Int64
		content.SourceID = &sourceID
	}

	for _, asset := range media {
		content.Media = append(content.Media, mediaFromRow(asset))
	}

	return content
}

func mediaFromRow(row repository.MediaAsset) model.Media {
	return model.Media{
		ID:                row.ID,
		URL:               row.Url,
		Kind:              row.Kind,
		PlatformReference: row.PlatformReference,
	}
}
