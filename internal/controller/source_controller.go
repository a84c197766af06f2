package controller

import (
	"errors"
	"time"

	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/service"
	"github.com/tinypost/tinypost/internal/utils/tlog"

	"github.com/gin-gonic/gin"
)

type CreateSourceRequest struct {
	Name            string   `json:"name"`
	URL             string   `json:"url" binding:"required"`
	IncludeKeywords []string `json:"includeKeywords"`
	ExcludeKeywords []string `json:"excludeKeywords"`
}

type SourceResponse struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	IncludeKeywords []string   `json:"includeKeywords"`
	ExcludeKeywords []string   `json:"excludeKeywords"`
	IsActive        bool       `json:"isActive"`
	LastPolledAt    *time.Time `json:"lastPolledAt"`
}

type SourceController struct {
	router  *gin.RouterGroup
	sources *service.SourceService
}

func NewSourceController(router *gin.RouterGroup, sources *service.SourceService) *SourceController {
	return &SourceController{
		router:  router,
		sources: sources,
	}
}

func (controller *SourceController) SetupRoutes() {
	sourceGroup := controller.router.Group("/sources")
	sourceGroup.GET("", controller.listHandler)
	sourceGroup.POST("", controller.createHandler)
	sourceGroup.POST("/:id/poll", controller.pollHandler)
}

func (controller *SourceController) listHandler(c *gin.Context) {
	context, ok := requireContext(c)
	if !ok {
		return
	}

	sources, err := controller.sources.List(c.Request.Context(), context.TenantID)

	if err != nil {
		tlog.App.Error().Err(err).Int64("tenant_id", context.TenantID).Msg("Failed to list sources")
		errorResponse(c, 500, "Internal Server Error")
		return
	}

	response := make([]SourceResponse, 0, len(sources))
	for _, source := range sources {
		response = append(response, newSourceResponse(source))
	}

	c.JSON(200, gin.H{
		"status":  200,
		"message": "OK",
		"sources": response,
	})
}

func (controller *SourceController) createHandler(c *gin.Context) {
	context, ok := requireContext(c)
	if !ok {
		return
	}

	var req CreateSourceRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		tlog.App.Debug().Err(err).Msg("Failed to bind source request")
		errorResponse(c, 400, "Bad Request")
		return
	}

	source, err := controller.sources.Create(c.Request.Context(), context.TenantID, service.CreateSourceParams{
		Name:            req.Name,
		URL:             req.URL,
		IncludeKeywords: req.IncludeKeywords,
		ExcludeKeywords: req.ExcludeKeywords,
	})

	if err != nil {
		tlog.App.Debug().Err(err).Msg("Failed to create source")
		errorResponse(c, 400, "Bad Request")
		return
	}

	c.JSON(201, gin.H{
		"status":  201,
		"message": "Created",
		"source":  newSourceResponse(source),
	})
}

func (controller *SourceController) pollHandler(c *gin.Context) {
	context, ok := requireContext(c)
	if !ok {
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	source, err := controller.sources.Get(c.Request.Context(), context.TenantID, id)

	if err != nil {
		if errors.Is(err, service.ErrSourceNotFound) {
			errorResponse(c, 404, "Not Found")
			return
		}
		tlog.App.Error().Err(err).Int64("source_id", id).Msg("Failed to load source")
		errorResponse(c, 500, "Internal Server Error")
		return
	}

	imported, err := controller.sources.Poll(c.Request.Context(), source)

	if err != nil {
		tlog.App.Warn().Err(err).Int64("source_id", id).Msg("Failed to poll source")
		errorResponse(c, 502, "Source Unavailable")
		return
	}

	c.JSON(200, gin.H{
		"status":   200,
		"message":  "OK",
		"imported": imported,
	})
}

func newSourceResponse(source model.Source) SourceResponse {
	return SourceResponse{
		ID:              source.ID,
		Name:            source.Name,
		URL:             source.URL,
		IncludeKeywords: source.IncludeKeywords,
		ExcludeKeywords: source.ExcludeKeywords,
		IsActive:        source.IsActive,
		LastPolledAt:    source.LastPolledAt,
	}
}
