package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tinypost/tinypost/internal/config"
	"github.com/tinypost/tinypost/internal/middleware"
	"github.com/tinypost/tinypost/internal/repository"
	"github.com/tinypost/tinypost/internal/service"
	"github.com/tinypost/tinypost/internal/utils"
	"github.com/tinypost/tinypost/internal/utils/tlog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type BootstrapApp struct {
	config  config.Config
	context struct {
		cookieDomain string
		redirectURL  string
		clientSecret string
	}
	db          *sql.DB
	queries     *repository.Queries
	registry    *prometheus.Registry
	services    Services
	rateLimiter *middleware.RateLimitMiddleware
	router      *gin.Engine
}

func NewBootstrapApp(config config.Config) *BootstrapApp {
	return &BootstrapApp{
		config: config,
	}
}

func (app *BootstrapApp) Setup() error {
	if err := app.init(); err != nil {
		return err
	}

	ctx := context.Background()

	// Start background routines
	tlog.App.Debug().Msg("Starting handshake cleanup routine")
	go app.handshakeCleanup(ctx)

	if app.rateLimiter != nil {
		tlog.App.Debug().Msg("Starting rate limiter cleanup routine")
		go app.rateLimitCleanup()
	}

	if app.config.Sources.PollInterval > 0 {
		tlog.App.Debug().Int("interval", app.config.Sources.PollInterval).Msg("Starting source poller")
		go app.sourcePoller(ctx)
	}

	// Start server
	address := fmt.Sprintf("%s:%d", app.config.Server.Address, app.config.Server.Port)
	tlog.App.Info().Msgf("Starting server on %s", address)

	if err := app.router.Run(address); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// init wires the database, services and router without starting anything
func (app *BootstrapApp) init() error {
	if app.config.AppURL == "" {
		return errors.New("app url is required")
	}

	appUrl, err := url.Parse(app.config.AppURL)

	if err != nil || appUrl.Scheme == "" || appUrl.Host == "" {
		return fmt.Errorf("invalid app url: %s", app.config.AppURL)
	}

	app.config.AppURL = strings.TrimRight(app.config.AppURL, "/")

	// Get cookie domain
	cookieDomain, err := utils.GetCookieDomain(app.config.AppURL)

	if err != nil {
		return fmt.Errorf("failed to get cookie domain: %w", err)
	}

	app.context.cookieDomain = cookieDomain

	// LinkedIn application
	app.context.clientSecret = utils.GetSecret(app.config.LinkedIn.ClientSecret, app.config.LinkedIn.ClientSecretFile)

	if app.config.LinkedIn.ClientID == "" || app.context.clientSecret == "" {
		return errors.New("linkedin client id and client secret are required")
	}

	app.context.redirectURL = app.config.LinkedIn.RedirectURL

	if app.context.redirectURL == "" {
		app.context.redirectURL = app.config.AppURL + "/api/integrations/linkedin/callback"
	}

	// Dumps
	tlog.App.Trace().Str("cookieDomain", app.context.cookieDomain).Msg("Cookie domain")
	tlog.App.Trace().Str("redirectUrl", app.context.redirectURL).Msg("LinkedIn redirect URL")
	tlog.App.Trace().Strs("scopes", app.config.LinkedIn.Scopes).Msg("LinkedIn scopes")

	// Database
	db, err := app.SetupDatabase(app.config.DatabasePath)

	if err != nil {
		return fmt.Errorf("failed to setup database: %w", err)
	}

	app.db = db
	app.queries = repository.New(db)

	// Metrics
	if app.config.Metrics.Enabled {
		app.registry = prometheus.NewRegistry()
	}

	// Services
	services, err := app.initServices(app.queries)

	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	app.services = services

	// Setup router
	router, err := app.setupRouter()

	if err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}

	app.router = router

	return nil
}

func (app *BootstrapApp) handshakeCleanup(ctx context.Context) {
	store, ok := app.services.handshakeStore.(*service.DatabaseHandshakeStore)

	// Redis expires handshakes on its own
	if !ok {
		return
	}

	ticker := time.NewTicker(time.Duration(10) * time.Minute)
	defer ticker.Stop()

	for ; true; <-ticker.C {
		tlog.App.Debug().Msg("Cleaning up expired handshakes")
		err := store.DeleteExpired(ctx, time.Now())
		if err != nil {
			tlog.App.Error().Err(err).Msg("Failed to clean up expired handshakes")
		}
	}
}

func (app *BootstrapApp) rateLimitCleanup() {
	ticker := time.NewTicker(app.rateLimiter.CleanupInterval())
	defer ticker.Stop()

	for range ticker.C {
		app.rateLimiter.Cleanup()
	}
}

func (app *BootstrapApp) sourcePoller(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(app.config.Sources.PollInterval) * time.Second)
	defer ticker.Stop()

	for ; true; <-ticker.C {
		tlog.App.Debug().Msg("Polling content sources")
		err := app.services.sourceService.PollAll(ctx)
		if err != nil {
			tlog.App.Error().Err(err).Msg("Failed to poll content sources")
		}
	}
}
