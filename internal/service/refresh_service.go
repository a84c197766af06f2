package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tinypost/tinypost/internal/metrics"
	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/utils"
	"github.com/tinypost/tinypost/internal/utils/tlog"
)

type TokenRefresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (model.TokenSet, error)
}

type RefreshService struct {
	tokens       TokenRefresher
	integrations *IntegrationService
	recorder     metrics.Recorder
	locks        keyedMutex
	now          func() time.Time
}

func NewRefreshService(tokens TokenRefresher, integrations *IntegrationService, recorder metrics.Recorder) *RefreshService {
	return &RefreshService{
		tokens:       tokens,
		integrations: integrations,
		recorder:     recorder,
		now:          time.Now,
	}
}

// EnsureFresh returns an integration whose access token is not known to be
// expired. Without a refresh token the stale record is returned unchanged.
func (rs *RefreshService) EnsureFresh(ctx context.Context, integration model.Integration) (model.Integration, error) {
	if !integration.Expired(rs.now()) {
		return integration, nil
	}

	if integration.RefreshToken == "" {
		tlog.App.Debug().Int64("integration_id", integration.ID).Msg("Access token expired and no refresh token is stored")
		return integration, nil
	}

	unlock := rs.locks.Lock(integration.ID)
	defer unlock()

	// Another request may have refreshed while we waited for the lock
	current, err := rs.integrations.Get(ctx, integration.ID)
	if err != nil {
		return integration, fmt.Errorf("reload integration: %w", err)
	}

	if !current.Expired(rs.now()) || current.RefreshToken == "" {
		return current, nil
	}

	tokens, err := rs.tokens.RefreshToken(ctx, current.RefreshToken)
	if err != nil {
		rs.recorder.RecordTokenRefresh(metrics.OutcomeFailure)
		return current, err
	}

	tokens.Scopes = narrowScopes(current.Scopes, tokens.Scopes)
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = current.RefreshToken
	}

	swapped, err := rs.integrations.SwapTokens(ctx, current, tokens)
	if err != nil {
		rs.recorder.RecordTokenRefresh(metrics.OutcomeFailure)
		return current, err
	}

	if !swapped {
		tlog.App.Debug().Int64("integration_id", current.ID).Msg("Tokens were refreshed concurrently, using stored tokens")
	}

	rs.recorder.RecordTokenRefresh(metrics.OutcomeSuccess)

	return rs.integrations.Get(ctx, current.ID)
}

// narrowScopes never lets a refresh widen the stored grant. An empty answer
// keeps the stored scopes and an empty stored set accepts the answer.
func narrowScopes(stored []string, refreshed []string) []string {
	if len(refreshed) == 0 {
		return stored
	}
	if len(stored) == 0 {
		return utils.NormalizeList(refreshed)
	}
	return utils.IntersectScopes(stored, refreshed)
}
