package controller

import (
	"errors"
	"time"

	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/service"
	"github.com/tinypost/tinypost/internal/utils/tlog"

	"github.com/gin-gonic/gin"
)

type CreateContentRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Link  string `json:"link"`
}

type AttachMediaRequest struct {
	URL               string `json:"url" binding:"required"`
	Kind              string `json:"kind"`
	PlatformReference string `json:"platformReference"`
}

type PublishRequest struct {
	IntegrationID int64 `json:"integrationId" binding:"required"`
}

type MediaResponse struct {
	ID                int64  `json:"id"`
	URL               string `json:"url"`
	Kind              string `json:"kind"`
	PlatformReference string `json:"platformReference"`
}

type ContentResponse struct {
	ID             int64           `json:"id"`
	SourceID       *int64          `json:"sourceId"`
	Title          string          `json:"title"`
	Body           string          `json:"body"`
	Link           string          `json:"link"`
	Status         string          `json:"status"`
	PlatformPostID string          `json:"platformPostId"`
	LastError      string          `json:"lastError"`
	PublishedAt    *time.Time      `json:"publishedAt"`
	Media          []MediaResponse `json:"media"`
}

type ContentController struct {
	router  *gin.RouterGroup
	content *service.ContentService
}

func NewContentController(router *gin.RouterGroup, content *service.ContentService) *ContentController {
	return &ContentController{
		router:  router,
		content: content,
	}
}

func (controller *ContentController) SetupRoutes() {
	contentGroup := controller.router.Group("/content")
	contentGroup.GET("", controller.listHandler)
	contentGroup.POST("", controller.createHandler)
	contentGroup.POST("/:id/media", controller.attachMediaHandler)
	contentGroup.POST("/:id/publish", controller.publishHandler)
}

func (controller *ContentController) listHandler(c *gin.Context) {
	context, ok := requireContext(c)
	if !ok {
		return
	}

	contents, err := controller.content.List(c.Request.Context(), context.TenantID)

	if err != nil {
		tlog.App.Error().Err(err).Int64("tenant_id", context.TenantID).Msg("Failed to list content")
		errorResponse(c, 500, "Internal Server Error")
		return
	}

	response := make([]ContentResponse, 0, len(contents))
	for _, content := range contents {
		response = append(response, newContentResponse(content))
	}

	c.JSON(200, gin.H{
		"status":  200,
		"message": "OK",
		"content": response,
	})
}

func (controller *ContentController) createHandler(c *gin.Context) {
	context, ok := requireContext(c)
	if !ok {
		return
	}

	var req CreateContentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		tlog.App.Debug().Err(err).Msg("Failed to bind content request")
		errorResponse(c, 400, "Bad Request")
		return
	}

	content, err := controller.content.Create(c.Request.Context(), context.TenantID, service.CreateContentParams{
		Title: req.Title,
		Body:  req.Body,
		Link:  req.Link,
	})

	if err != nil {
		tlog.App.Debug().Err(err).Msg("Failed to create content")
		errorResponse(c, 400, "Bad Request")
		return
	}

	c.JSON(201, gin.H{
		"status":  201,
		"message": "Created",
		"content": newContentResponse(content),
	})
}

func (controller *ContentController) attachMediaHandler(c *gin.Context) {
	context, ok := requireContext(c)
	if !ok {
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	var req AttachMediaRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		tlog.App.Debug().Err(err).Msg("Failed to bind media request")
		errorResponse(c, 400, "Bad Request")
		return
	}

	media, err := controller.content.AttachMedia(c.Request.Context(), context.TenantID, id, service.AttachMediaParams{
		URL:               req.URL,
		Kind:              req.Kind,
		PlatformReference: req.PlatformReference,
	})

	if err != nil {
		if errors.Is(err, service.ErrContentNotFound) {
			errorResponse(c, 404, "Not Found")
			return
		}
		tlog.App.Error().Err(err).Int64("content_id", id).Msg("Failed to attach media")
		errorResponse(c, 500, "Internal Server Error")
		return
	}

	c.JSON(201, gin.H{
		"status":  201,
		"message": "Created",
		"media":   newMediaResponse(media),
	})
}

func (controller *ContentController) publishHandler(c *gin.Context) {
	context, ok := requireContext(c)
	if !ok {
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	var req PublishRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		tlog.App.Debug().Err(err).Msg("Failed to bind publish request")
		errorResponse(c, 400, "Bad Request")
		return
	}

	content, result, err := controller.content.Publish(c.Request.Context(), context.TenantID, id, req.IntegrationID)

	if err != nil {
		var publishErr *service.PublishError

		switch {
		case errors.Is(err, service.ErrContentNotFound), errors.Is(err, service.ErrIntegrationNotFound):
			errorResponse(c, 404, "Not Found")
		case errors.Is(err, service.ErrIntegrationInactive):
			errorResponse(c, 409, "Integration Disconnected")
		case errors.As(err, &publishErr):
			tlog.App.Warn().Err(err).Int64("content_id", id).Int64("integration_id", req.IntegrationID).Msg("Publish failed")
			c.JSON(502, gin.H{
				"status":  502,
				"message": "Publish Failed",
				"content": newContentResponse(content),
			})
		default:
			tlog.App.Error().Err(err).Int64("content_id", id).Msg("Failed to publish content")
			errorResponse(c, 500, "Internal Server Error")
		}
		return
	}

	c.JSON(200, gin.H{
		"status":         200,
		"message":        "Published",
		"platformPostId": result.PlatformPostID,
		"content":        newContentResponse(content),
	})
}

func newContentResponse(content model.Content) ContentResponse {
	media := make([]MediaResponse, 0, len(content.Media))
	for _, item := range content.Media {
		media = append(media, newMediaResponse(item))
	}

	return ContentResponse{
		ID:             content.ID,
		SourceID:       content.SourceID,
		Title:          content.Title,
		Body:           content.Body,
		Link:           content.Link,
		Status:         content.Status,
		PlatformPostID: content.PlatformPostID,
		LastError:      content.LastError,
		PublishedAt:    content.PublishedAt,
		Media:          media,
	}
}

func newMediaResponse(media model.Media) MediaResponse {
	return MediaResponse{
		ID:                media.ID,
		URL:               media.URL,
		Kind:              media.Kind,
		PlatformReference: media.PlatformReference,
	}
}
