package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tinypost/tinypost/internal/config"
	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/service"
	"github.com/tinypost/tinypost/internal/utils"
	"github.com/tinypost/tinypost/internal/utils/tlog"

	"github.com/gin-gonic/gin"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
)

const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

type IntegrationResponse struct {
	ID               int64      `json:"id"`
	Platform         string     `json:"platform"`
	PlatformUserID   string     `json:"platformUserId"`
	PlatformUsername string     `json:"platformUsername"`
	DisplayName      string     `json:"displayName"`
	Scopes           []string   `json:"scopes"`
	ExpiresAt        *time.Time `json:"expiresAt"`
	IsActive         bool       `json:"isActive"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type IntegrationControllerConfig struct {
	AppURL string
}

type IntegrationController struct {
	config       IntegrationControllerConfig
	router       *gin.RouterGroup
	connect      *service.ConnectService
	integrations *service.IntegrationService
}

func NewIntegrationController(config IntegrationControllerConfig, router *gin.RouterGroup, connect *service.ConnectService, integrations *service.IntegrationService) *IntegrationController {
	return &IntegrationController{
		config:       config,
		router:       router,
		connect:      connect,
		integrations: integrations,
	}
}

func (controller *IntegrationController) SetupRoutes() {
	integrationGroup := controller.router.Group("/integrations")
	integrationGroup.GET("", controller.listHandler)
	integrationGroup.GET("/linkedin/connect", controller.connectHandler)
	integrationGroup.GET("/linkedin/callback", controller.callbackHandler)
	integrationGroup.POST("/:id/disconnect", controller.disconnectHandler)
}

func (controller *IntegrationController) listHandler(c *gin.Context) {
	context, ok := requireContext(c)
	if !ok {
		return
	}

	integrations, err := controller.integrations.List(c.Request.Context(), context.TenantID)

	if err != nil {
		tlog.App.Error().Err(err).Int64("tenant_id", context.TenantID).Msg("Failed to list integrations")
		errorResponse(c, 500, "Internal Server Error")
		return
	}

	response := make([]IntegrationResponse, 0, len(integrations))
	for _, integration := range integrations {
		response = append(response, newIntegrationResponse(integration))
	}

	c.JSON(200, gin.H{
		"status":       200,
		"message":      "OK",
		"integrations": response,
	})
}

func (controller *IntegrationController) connectHandler(c *gin.Context) {
	context, ok := requireContext(c)
	if !ok {
		return
	}

	authURL, err := controller.connect.Begin(c.Request.Context(), context.SessionID, context.TenantID)

	if err != nil {
		tlog.App.Error().Err(err).Int64("tenant_id", context.TenantID).Msg("Failed to start LinkedIn connection")
		controller.redirectWithFlash(c, config.FlashQuery{
			Status:  FlashError,
			Message: "Could not start the LinkedIn connection, please try again.",
		})
		return
	}

	tlog.App.Debug().Int64("tenant_id", context.TenantID).Msg("Redirecting to LinkedIn authorization")

	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

func (controller *IntegrationController) callbackHandler(c *gin.Context) {
	context, err := utils.GetContext(c)

	if err != nil {
		tlog.App.Warn().Msg("LinkedIn callback without a user context")
		controller.redirectWithFlash(c, config.FlashQuery{
			Status:  FlashError,
			Message: "Your session has expired, please sign in and try again.",
		})
		return
	}

	integration, err := controller.connect.Complete(c.Request.Context(), service.CallbackParams{
		SessionID:        context.SessionID,
		TenantID:         context.TenantID,
		State:            c.Query("state"),
		Code:             c.Query("code"),
		Error:            c.Query("error"),
		ErrorDescription: c.Query("error_description"),
	})

	if err != nil {
		controller.redirectWithFlash(c, controller.callbackFlash(context, err))
		return
	}

	tlog.App.Info().Int64("tenant_id", context.TenantID).Int64("integration_id", integration.ID).Msg("LinkedIn account connected")

	controller.redirectWithFlash(c, config.FlashQuery{
		Status:  FlashSuccess,
		Message: fmt.Sprintf("LinkedIn account %s connected.", integration.DisplayName),
	})
}

func (controller *IntegrationController) disconnectHandler(c *gin.Context) {
	context, ok := requireContext(c)
	if !ok {
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	err := controller.connect.Disconnect(c.Request.Context(), context.TenantID, id)

	if err != nil {
		if errors.Is(err, service.ErrIntegrationNotFound) {
			errorResponse(c, 404, "Not Found")
			return
		}
		tlog.App.Error().Err(err).Int64("integration_id", id).Msg("Failed to disconnect integration")
		errorResponse(c, 500, "Internal Server Error")
		return
	}

	c.JSON(200, gin.H{
		"status":  200,
		"message": "Integration disconnected",
	})
}

// callbackFlash maps a failed callback to the message shown to the user.
// Upstream failures get a reference the logs can be searched by.
func (controller *IntegrationController) callbackFlash(context config.UserContext, err error) config.FlashQuery {
	var rejection *service.ProviderRejectionError
	var exchangeErr *service.TokenExchangeError
	var profileErr *service.ProfileFetchError

	switch {
	case errors.As(err, &rejection):
		tlog.App.Info().Str("code", rejection.Code).Int64("tenant_id", context.TenantID).Msg("LinkedIn authorization declined")
		return config.FlashQuery{
			Status:  FlashInfo,
			Message: "LinkedIn authorization was cancelled.",
		}
	case errors.Is(err, service.ErrHandshakeMismatch):
		tlog.App.Warn().Err(err).Int64("tenant_id", context.TenantID).Msg("LinkedIn callback did not match the pending handshake")
		return config.FlashQuery{
			Status:  FlashError,
			Message: "The connection attempt expired or did not match, please try again.",
		}
	}

	ref := uuid.NewString()
	event := tlog.App.Error().Str("ref", ref).Int64("tenant_id", context.TenantID)

	switch {
	case errors.As(err, &exchangeErr):
		event.Int("status", exchangeErr.Status).Str("body", utils.RedactSecret(exchangeErr.Body)).Msg("LinkedIn token exchange failed")
	case errors.As(err, &profileErr):
		event.Int("status", profileErr.Status).Str("body", utils.RedactSecret(profileErr.Body)).Msg("LinkedIn profile fetch failed")
	default:
		event.Err(err).Msg("Failed to complete LinkedIn connection")
	}

	return config.FlashQuery{
		Status:  FlashError,
		Message: "Could not connect your LinkedIn account, please try again.",
		Ref:     ref,
	}
}

func (controller *IntegrationController) redirectWithFlash(c *gin.Context, flash config.FlashQuery) {
	queries, err := query.Values(flash)

	if err != nil {
		tlog.App.Error().Err(err).Msg("Failed to encode flash query")
		c.Redirect(http.StatusTemporaryRedirect, fmt.Sprintf("%s/settings/integrations", controller.config.AppURL))
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, fmt.Sprintf("%s/settings/integrations?%s", controller.config.AppURL, queries.Encode()))
}

func newIntegrationResponse(integration model.Integration) IntegrationResponse {
	return IntegrationResponse{
		ID:               integration.ID,
		Platform:         integration.Platform,
		PlatformUserID:   integration.PlatformUserID,
		PlatformUsername: integration.PlatformUsername,
		DisplayName:      integration.DisplayName,
		Scopes:           integration.Scopes,
		ExpiresAt:        integration.ExpiresAt,
		IsActive:         integration.IsActive,
		CreatedAt:        integration.CreatedAt,
	}
}
