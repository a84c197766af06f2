package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/utils"
)

const (
	maxCommentaryLength = 3000
	commentaryMarker    = "..."
	authorURNPrefix     = "urn:li:person:"
	restliProtocol      = "2.0.0"
	postIDHeader        = "x-restli-id"
)

type postPayload struct {
	Author                    string           `json:"author"`
	Commentary                string           `json:"commentary"`
	Visibility                string           `json:"visibility"`
	Distribution              postDistribution `json:"distribution"`
	Content                   *postContent     `json:"content,omitempty"`
	LifecycleState            string           `json:"lifecycleState"`
	IsReshareDisabledByAuthor bool             `json:"isReshareDisabledByAuthor"`
}

type postDistribution struct {
	FeedDistribution               string   `json:"feedDistribution"`
	TargetEntities                 []string `json:"targetEntities"`
	ThirdPartyDistributionChannels []string `json:"thirdPartyDistributionChannels"`
}

type postContent struct {
	Media      *postMedia      `json:"media,omitempty"`
	MultiImage *postMultiImage `json:"multiImage,omitempty"`
}

type postMedia struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

type postMultiImage struct {
	Images []postImage `json:"images"`
}

type postImage struct {
	ID      string `json:"id"`
	AltText string `json:"altText,omitempty"`
}

type Freshener interface {
	EnsureFresh(ctx context.Context, integration model.Integration) (model.Integration, error)
}

type PublishServiceConfig struct {
	APIURL     string
	APIVersion string
	Retry      RetryPolicy
}

type PublishService struct {
	config  PublishServiceConfig
	api     *apiClient
	refresh Freshener
	events  *EventBroker
}

func NewPublishService(config PublishServiceConfig, httpClient *http.Client, refresh Freshener, events *EventBroker) *PublishService {
	return &PublishService{
		config:  config,
		api:     newAPIClient(config.APIURL, httpClient, config.Retry),
		refresh: refresh,
		events:  events,
	}
}

// Publish submits content as a post by the integration's member. Every
// failure is returned as a *PublishError after the failed event is emitted.
func (ps *PublishService) Publish(ctx context.Context, integration model.Integration, content model.Content) (model.PublishResult, error) {
	result, err := ps.publish(ctx, integration, content)
	if err != nil {
		var publishErr *PublishError
		if !errors.As(err, &publishErr) {
			publishErr = &PublishError{Err: err}
		}

		ps.events.Publish(ctx, Event{
			Type:          EventContentPublishFailed,
			TenantID:      integration.TenantID,
			IntegrationID: integration.ID,
			Platform:      integration.Platform,
			ContentID:     content.ID,
			Err:           publishErr,
		})

		return model.PublishResult{}, publishErr
	}

	ps.events.Publish(ctx, Event{
		Type:           EventContentPublished,
		TenantID:       integration.TenantID,
		IntegrationID:  integration.ID,
		Platform:       integration.Platform,
		ContentID:      content.ID,
		PlatformPostID: result.PlatformPostID,
		Payload:        result.Payload,
	})

	return result, nil
}

func (ps *PublishService) publish(ctx context.Context, integration model.Integration, content model.Content) (model.PublishResult, error) {
	integration, err := ps.refresh.EnsureFresh(ctx, integration)
	if err != nil {
		return model.PublishResult{}, fmt.Errorf("refresh token: %w", err)
	}

	if !integration.IsActive {
		return model.PublishResult{}, ErrIntegrationInactive
	}

	payload, err := BuildPostPayload(integration, content)
	if err != nil {
		return model.PublishResult{}, err
	}

	res, err := ps.api.do(ctx, apiRequest{
		Method:      http.MethodPost,
		Path:        "/rest/posts",
		AccessToken: integration.AccessToken,
		Body:        payload,
		Headers: map[string]string{
			"LinkedIn-Version":          ps.config.APIVersion,
			"X-Restli-Protocol-Version": restliProtocol,
		},
	})
	if err != nil {
		var statusErr *apiStatusError
		if errors.As(err, &statusErr) {
			return model.PublishResult{}, &PublishError{Status: statusErr.Status, Body: statusErr.Body, Err: err}
		}
		return model.PublishResult{}, err
	}

	postID := res.Header.Get(postIDHeader)
	if postID == "" {
		return model.PublishResult{}, errors.New("response has no post id")
	}

	return model.PublishResult{
		PlatformPostID: postID,
		Payload:        payload,
	}, nil
}

// BuildPostPayload renders the posts API request body for content
func BuildPostPayload(integration model.Integration, content model.Content) ([]byte, error) {
	payload := postPayload{
		Author:     AuthorURN(integration.PlatformUserID),
		Commentary: utils.Truncate(commentary(content), maxCommentaryLength, commentaryMarker),
		Visibility: "PUBLIC",
		Distribution: postDistribution{
			FeedDistribution:               "MAIN_FEED",
			TargetEntities:                 []string{},
			ThirdPartyDistributionChannels: []string{},
		},
		Content:                   postMediaContent(content),
		LifecycleState:            "PUBLISHED",
		IsReshareDisabledByAuthor: false,
	}

	return json.Marshal(payload)
}

func AuthorURN(platformUserID string) string {
	if strings.HasPrefix(platformUserID, "urn:") {
		return platformUserID
	}
	return authorURNPrefix + platformUserID
}

func commentary(content model.Content) string {
	text := strings.TrimSpace(content.Body)
	if text == "" {
		text = strings.TrimSpace(content.Title)
	}
	if content.Link != "" && !strings.Contains(text, content.Link) {
		if text != "" {
			text += "\n\n"
		}
		text += content.Link
	}
	return text
}

// postMediaContent uses the single media form for one reference and the
// multi image form for more. Media that was never uploaded is skipped.
func postMediaContent(content model.Content) *postContent {
	uploaded := make([]model.Media, 0, len(content.Media))
	for _, media := range content.Media {
		if media.PlatformReference != "" {
			uploaded = append(uploaded, media)
		}
	}

	switch len(uploaded) {
	case 0:
		return nil
	case 1:
		return &postContent{
			Media: &postMedia{
				ID:    uploaded[0].PlatformReference,
				Title: content.Title,
			},
		}
	}

	images := make([]postImage, 0, len(uploaded))
	for _, media := range uploaded {
		images = append(images, postImage{
			ID:      media.PlatformReference,
			AltText: content.Title,
		})
	}

	return &postContent{
		MultiImage: &postMultiImage{Images: images},
	}
}
