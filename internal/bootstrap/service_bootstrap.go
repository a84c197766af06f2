package bootstrap

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tinypost/tinypost/internal/config"
	"github.com/tinypost/tinypost/internal/metrics"
	"github.com/tinypost/tinypost/internal/repository"
	"github.com/tinypost/tinypost/internal/service"
	"github.com/tinypost/tinypost/internal/utils"
	"github.com/tinypost/tinypost/internal/utils/tlog"

	"github.com/doyensec/safeurl"
)

type Services struct {
	events             *service.EventBroker
	handshakeStore     service.HandshakeStore
	handshakeService   *service.HandshakeService
	tokenService       *service.TokenService
	profileService     *service.ProfileService
	integrationService *service.IntegrationService
	refreshService     *service.RefreshService
	publishService     *service.PublishService
	connectService     *service.ConnectService
	contentService     *service.ContentService
	sourceService      *service.SourceService
}

func (app *BootstrapApp) initServices(queries *repository.Queries) (Services, error) {
	services := Services{}

	cipher, err := utils.NewTokenCipher(utils.GetSecret(app.config.Security.TokenEncryptionKey, app.config.Security.TokenEncryptionKeyFile))

	if err != nil {
		return Services{}, err
	}

	if cipher == nil {
		tlog.App.Warn().Msg("No token encryption key configured, tokens will be stored in plain text")
	}

	var recorder metrics.Recorder = metrics.NopRecorder{}

	if app.registry != nil {
		recorder = metrics.NewCollector(app.registry)
	}

	timeout := time.Duration(app.config.Client.Timeout) * time.Second

	retry := service.RetryPolicy{
		MaxRetries: app.config.Client.MaxRetries,
		Backoff:    time.Duration(app.config.Client.RetryBackoff) * time.Millisecond,
	}

	linkedInClient := &http.Client{
		Timeout: timeout,
	}

	// Feed urls are user supplied
	feedClient := safeurl.Client(safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()).Client

	events := service.NewEventBroker()
	events.Subscribe(service.AuditListener{})
	events.Subscribe(service.NewMetricsListener(recorder))
	events.Subscribe(service.NewContentStatusListener(queries))

	services.events = events

	handshakeStore, err := app.setupHandshakeStore(queries)

	if err != nil {
		return Services{}, fmt.Errorf("failed to setup handshake store: %w", err)
	}

	services.handshakeStore = handshakeStore

	handshakeService := service.NewHandshakeService(service.HandshakeServiceConfig{
		Platform: config.PlatformLinkedIn,
		TTL:      time.Duration(app.config.Handshake.TTL) * time.Second,
	}, handshakeStore)

	services.handshakeService = handshakeService

	tokenService := service.NewTokenService(service.TokenServiceConfig{
		ClientID:     app.config.LinkedIn.ClientID,
		ClientSecret: app.context.clientSecret,
		RedirectURL:  app.context.redirectURL,
		Scopes:       app.config.LinkedIn.Scopes,
		AuthURL:      app.config.LinkedIn.AuthURL,
		TokenURL:     app.config.LinkedIn.TokenURL,
		Retry:        retry,
	}, linkedInClient)

	services.tokenService = tokenService

	profileService := service.NewProfileService(service.ProfileServiceConfig{
		APIURL: app.config.LinkedIn.APIURL,
		Retry:  retry,
	}, linkedInClient)

	services.profileService = profileService

	integrationService := service.NewIntegrationService(queries, cipher)

	services.integrationService = integrationService

	refreshService := service.NewRefreshService(tokenService, integrationService, recorder)

	services.refreshService = refreshService

	publishService := service.NewPublishService(service.PublishServiceConfig{
		APIURL:     app.config.LinkedIn.APIURL,
		APIVersion: app.config.LinkedIn.APIVersion,
		Retry:      retry,
	}, linkedInClient, refreshService, events)

	services.publishService = publishService

	services.connectService = service.NewConnectService(config.PlatformLinkedIn, handshakeService, tokenService, profileService, integrationService, events)
	services.contentService = service.NewContentService(queries, integrationService, publishService)
	services.sourceService = service.NewSourceService(service.SourceServiceConfig{
		MaxItems:    app.config.Sources.MaxItems,
		MaxBodySize: app.config.Sources.MaxBodySize,
		UserAgent:   "tinypost/" + config.Version,
	}, queries, feedClient, recorder)

	return services, nil
}
