package bootstrap

import (
	"fmt"
	"time"

	"github.com/tinypost/tinypost/internal/config"
	"github.com/tinypost/tinypost/internal/controller"
	"github.com/tinypost/tinypost/internal/metrics"
	"github.com/tinypost/tinypost/internal/middleware"
	"github.com/tinypost/tinypost/internal/utils"

	"github.com/gin-gonic/gin"
)

func (app *BootstrapApp) setupRouter() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	if app.config.Server.TrustedProxies != "" {
		err := engine.SetTrustedProxies(utils.SplitList(app.config.Server.TrustedProxies))

		if err != nil {
			return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
		}
	}

	zerologMiddleware := middleware.NewZerologMiddleware()

	err := zerologMiddleware.Init()

	if err != nil {
		return nil, fmt.Errorf("failed to initialize zerolog middleware: %w", err)
	}

	engine.Use(zerologMiddleware.Middleware())

	contextMiddleware := middleware.NewContextMiddleware(middleware.ContextMiddlewareConfig{
		CookieDomain:      app.context.cookieDomain,
		SecureCookie:      app.config.Server.SecureCookie,
		SessionCookieName: config.SessionCookieName,
	})

	err = contextMiddleware.Init()

	if err != nil {
		return nil, fmt.Errorf("failed to initialize context middleware: %w", err)
	}

	engine.Use(contextMiddleware.Middleware())

	if app.registry != nil {
		engine.GET("/metrics", gin.WrapH(metrics.Handler(app.registry)))
	}

	apiRouter := engine.Group("/api")

	if app.config.RateLimit.RequestsPerMinute > 0 {
		rateLimiter := middleware.NewRateLimitMiddleware(middleware.RateLimitMiddlewareConfig{
			RequestsPerMinute: app.config.RateLimit.RequestsPerMinute,
			Burst:             app.config.RateLimit.Burst,
			CleanupInterval:   10 * time.Minute,
		})

		err = rateLimiter.Init()

		if err != nil {
			return nil, fmt.Errorf("failed to initialize rate limit middleware: %w", err)
		}

		apiRouter.Use(rateLimiter.Middleware())
		app.rateLimiter = rateLimiter
	}

	integrationController := controller.NewIntegrationController(controller.IntegrationControllerConfig{
		AppURL: app.config.AppURL,
	}, apiRouter, app.services.connectService, app.services.integrationService)

	integrationController.SetupRoutes()

	contentController := controller.NewContentController(apiRouter, app.services.contentService)

	contentController.SetupRoutes()

	sourceController := controller.NewSourceController(apiRouter, app.services.sourceService)

	sourceController.SetupRoutes()

	healthController := controller.NewHealthController(apiRouter, app.db)

	healthController.SetupRoutes()

	return engine, nil
}
