package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/repository"
	"github.com/tinypost/tinypost/internal/utils"
)

type IntegrationService struct {
	queries *repository.Queries
	cipher  *utils.TokenCipher
	now     func() time.Time
}

func NewIntegrationService(queries *repository.Queries, cipher *utils.TokenCipher) *IntegrationService {
	return &IntegrationService{
		queries: queries,
		cipher:  cipher,
		now:     time.Now,
	}
}

// Upsert stores the connection keyed by (tenant, platform, platform user) and
// always leaves it active. An empty refresh token keeps the stored one.
func (is *IntegrationService) Upsert(ctx context.Context, tenantID int64, platform string, tokens model.TokenSet, profile model.Profile) (model.Integration, error) {
	accessToken, err := is.cipher.Encrypt(tokens.AccessToken)
	if err != nil {
		return model.Integration{}, fmt.Errorf("encrypt access token: %w", err)
	}

	refreshToken, err := is.cipher.Encrypt(tokens.RefreshToken)
	if err != nil {
		return model.Integration{}, fmt.Errorf("encrypt refresh token: %w", err)
	}

	rawProfile := "{}"
	if len(profile.Raw) > 0 {
		rawProfile = string(profile.Raw)
	}

	now := is.now().Unix()

	row, err := is.queries.UpsertIntegration(ctx, repository.UpsertIntegrationParams{
		TenantID:         tenantID,
		Platform:         platform,
		PlatformUserID:   profile.PlatformUserID,
		PlatformUsername: profile.Username,
		DisplayName:      profile.DisplayName,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenExpiresAt:   nullUnix(tokens.ExpiresAt),
		Scopes:           strings.Join(utils.NormalizeList(tokens.Scopes), " "),
		Profile:          rawProfile,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return model.Integration{}, fmt.Errorf("upsert integration: %w", err)
	}

	return is.fromRow(row)
}

func (is *IntegrationService) Get(ctx context.Context, id int64) (model.Integration, error) {
	row, err := is.queries.GetIntegration(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Integration{}, ErrIntegrationNotFound
		}
		return model.Integration{}, err
	}
	return is.fromRow(row)
}

func (is *IntegrationService) GetForTenant(ctx context.Context, tenantID int64, id int64) (model.Integration, error) {
	row, err := is.queries.GetTenantIntegration(ctx, repository.GetTenantIntegrationParams{
		ID:       id,
		TenantID: tenantID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Integration{}, ErrIntegrationNotFound
		}
		return model.Integration{}, err
	}
	return is.fromRow(row)
}

func (is *IntegrationService) List(ctx context.Context, tenantID int64) ([]model.Integration, error) {
	rows, err := is.queries.ListTenantIntegrations(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	integrations := make([]model.Integration, 0, len(rows))
	for _, row := range rows {
		integration, err := is.fromRow(row)
		if err != nil {
			return nil, err
		}
		integrations = append(integrations, integration)
	}

	return integrations, nil
}

// SwapTokens replaces the tokens only if the stored access token is still the
// one the caller saw. It reports false when another writer got there first.
func (is *IntegrationService) SwapTokens(ctx context.Context, current model.Integration, tokens model.TokenSet) (bool, error) {
	row, err := is.queries.GetIntegration(ctx, current.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrIntegrationNotFound
		}
		return false, err
	}

	storedAccessToken, err := is.cipher.Decrypt(row.AccessToken)
	if err != nil {
		return false, fmt.Errorf("decrypt access token: %w", err)
	}

	if storedAccessToken != current.AccessToken {
		return false, nil
	}

	refreshToken := tokens.RefreshToken
	if refreshToken == "" {
		refreshToken = current.RefreshToken
	}

	encryptedAccess, err := is.cipher.Encrypt(tokens.AccessToken)
	if err != nil {
		return false, fmt.Errorf("encrypt access token: %w", err)
	}

	encryptedRefresh, err := is.cipher.Encrypt(refreshToken)
	if err != nil {
		return false, fmt.Errorf("encrypt refresh token: %w", err)
	}

	affected, err := is.queries.UpdateIntegrationTokens(ctx, repository.UpdateIntegrationTokensParams{
		AccessToken:    encryptedAccess,
		RefreshToken:   encryptedRefresh,
		TokenExpiresAt: nullUnix(tokens.ExpiresAt),
		Scopes:         strings.Join(utils.NormalizeList(tokens.Scopes), " "),
		UpdatedAt:      is.now().Unix(),
		ID:             current.ID,
		AccessToken_2:  row.AccessToken,
	})
	if err != nil {
		return false, fmt.Errorf("update integration tokens: %w", err)
	}

	return affected == 1, nil
}

func (is *IntegrationService) SetActive(ctx context.Context, tenantID int64, id int64, active bool) error {
	affected, err := is.queries.SetIntegrationActive(ctx, repository.SetIntegrationActiveParams{
		IsActive:  active,
		UpdatedAt: is.now().Unix(),
		ID:        id,
		TenantID:  tenantID,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrIntegrationNotFound
	}
	return nil
}

func (is *IntegrationService) fromRow(row repository.Integration) (model.Integration, error) {
	accessToken, err := is.cipher.Decrypt(row.AccessToken)
	if err != nil {
		return model.Integration{}, fmt.Errorf("decrypt access token: %w", err)
	}

	refreshToken, err := is.cipher.Decrypt(row.RefreshToken)
	if err != nil {
		return model.Integration{}, fmt.Errorf("decrypt refresh token: %w", err)
	}

	return model.Integration{
		ID:               row.ID,
		TenantID:         row.TenantID,
		Platform:         row.Platform,
		PlatformUserID:   row.PlatformUserID,
		PlatformUsername: row.PlatformUsername,
		DisplayName:      row.DisplayName,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresAt:        timeFromNull(row.TokenExpiresAt),
		Scopes:           utils.ParseScopes(row.Scopes),
		Profile:          json.RawMessage(row.Profile),
		IsActive:         row.IsActive,
		CreatedAt:        time.Unix(row.CreatedAt, 0),
		UpdatedAt:        time.Unix(row.UpdatedAt, 0),
	}, nil
}

func nullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func timeFromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0)
	return &t
}
