package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/utils/tlog"
)

type userinfoResponse struct {
	Sub        string `json:"sub"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	Email      string `json:"email"`
}

type meResponse struct {
	ID                 string `json:"id"`
	LocalizedFirstName string `json:"localizedFirstName"`
	LocalizedLastName  string `json:"localizedLastName"`
	VanityName         string `json:"vanityName"`
}

type ProfileServiceConfig struct {
	APIURL string
	Retry  RetryPolicy
}

type ProfileService struct {
	config ProfileServiceConfig
	api    *apiClient
}

func NewProfileService(config ProfileServiceConfig, httpClient *http.Client) *ProfileService {
	return &ProfileService{
		config: config,
		api:    newAPIClient(config.APIURL, httpClient, config.Retry),
	}
}

// Resolve combines the OIDC userinfo document with the legacy /v2/me profile.
// Only the userinfo call is required to succeed.
func (ps *ProfileService) Resolve(ctx context.Context, accessToken string) (model.Profile, error) {
	userinfoRaw, err := ps.fetch(ctx, accessToken, "/v2/userinfo")
	if err != nil {
		return model.Profile{}, newProfileFetchError(err)
	}

	var userinfo userinfoResponse
	if err := json.Unmarshal(userinfoRaw, &userinfo); err != nil {
		return model.Profile{}, &ProfileFetchError{Body: string(userinfoRaw), Err: fmt.Errorf("decode userinfo: %w", err)}
	}

	var me meResponse
	meRaw, err := ps.fetch(ctx, accessToken, "/v2/me")
	if err != nil {
		tlog.App.Warn().Err(err).Msg("Failed to fetch legacy profile, continuing with userinfo only")
		meRaw = nil
	} else if err := json.Unmarshal(meRaw, &me); err != nil {
		tlog.App.Warn().Err(err).Msg("Failed to decode legacy profile, ignoring it")
		meRaw = nil
		me = meResponse{}
	}

	profile, err := mergeProfile(userinfo, me)
	if err != nil {
		return model.Profile{}, err
	}

	raw, err := json.Marshal(struct {
		Userinfo json.RawMessage `json:"userinfo"`
		Me       json.RawMessage `json:"me"`
	}{
		Userinfo: userinfoRaw,
		Me:       meRaw,
	})
	if err != nil {
		return model.Profile{}, fmt.Errorf("encode raw profile: %w", err)
	}
	profile.Raw = raw

	return profile, nil
}

func (ps *ProfileService) fetch(ctx context.Context, accessToken string, path string) (json.RawMessage, error) {
	res, err := ps.api.do(ctx, apiRequest{
		Method:      http.MethodGet,
		Path:        path,
		AccessToken: accessToken,
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Body), nil
}

func mergeProfile(userinfo userinfoResponse, me meResponse) (model.Profile, error) {
	profile := model.Profile{
		PlatformUserID: firstNonEmpty(userinfo.Sub, me.ID),
		DisplayName: firstNonEmpty(
			userinfo.Name,
			joinName(userinfo.GivenName, userinfo.FamilyName),
			joinName(me.LocalizedFirstName, me.LocalizedLastName),
		),
		Username: firstNonEmpty(me.VanityName, userinfo.Email),
	}

	if profile.PlatformUserID == "" {
		return model.Profile{}, &ProfileFetchError{Err: errors.New("profile has no user id")}
	}

	if userinfo.Picture != "" {
		picture := userinfo.Picture
		profile.PictureURL = &picture
	}

	return profile, nil
}

func newProfileFetchError(err error) *ProfileFetchError {
	fetchErr := &ProfileFetchError{Err: err}
	var statusErr *apiStatusError
	if errors.As(err, &statusErr) {
		fetchErr.Status = statusErr.Status
		fetchErr.Body = statusErr.Body
	}
	return fetchErr
}

func joinName(first string, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
