package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tinypost/tinypost/internal/middleware"
	"github.com/tinypost/tinypost/internal/utils/tlog"

	"github.com/charmbracelet/huh"
	"github.com/traefik/paerser/cli"
)

// PublishConfig talks to the API directly, so AppURL has to point past the
// forward auth proxy.
type PublishConfig struct {
	Interactive bool   `description:"Ask for the values interactively."`
	AppURL      string `description:"The base URL where tinypost is reachable."`
	Username    string `description:"Username sent as the Remote-User header."`
	Tenant      int64  `description:"Tenant that owns the content."`
	Content     int64  `description:"ID of the content item to publish."`
	Integration int64  `description:"ID of the integration to publish with."`
}

type publishResponse struct {
	Status         int    `json:"status"`
	Message        string `json:"message"`
	PlatformPostID string `json:"platformPostId"`
}

func NewPublishConfig() *PublishConfig {
	return &PublishConfig{
		Interactive: false,
		AppURL:      "http://localhost:3000",
		Username:    "tinypost-cli",
	}
}

func publishCmd() *cli.Command {
	tCfg := NewPublishConfig()

	loaders := []cli.ResourceLoader{
		&cli.FlagLoader{},
	}

	return &cli.Command{
		Name:          "publish",
		Description:   "Publish a content item through a connected integration",
		Configuration: tCfg,
		Resources:     loaders,
		Run: func(_ []string) error {
			tlog.NewSimpleLogger().Init()

			if tCfg.Interactive {
				if err := runPublishForm(tCfg); err != nil {
					return err
				}
			}

			if tCfg.AppURL == "" || tCfg.Tenant <= 0 || tCfg.Content <= 0 || tCfg.Integration <= 0 {
				return errors.New("app url, tenant, content and integration are required")
			}

			client := &http.Client{
				Timeout: 60 * time.Second,
			}

			result, err := publishContent(client, *tCfg)

			if err != nil {
				return err
			}

			tlog.App.Info().Str("post_id", result.PlatformPostID).Int64("content_id", tCfg.Content).Msg("Content published")

			return nil
		},
	}
}

func runPublishForm(tCfg *PublishConfig) error {
	tenant := formatID(tCfg.Tenant)
	content := formatID(tCfg.Content)
	integration := formatID(tCfg.Integration)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("App URL").Value(&tCfg.AppURL).Validate(func(s string) error {
				if s == "" {
					return errors.New("app url cannot be empty")
				}
				return nil
			}),
			huh.NewInput().Title("Tenant ID").Value(&tenant).Validate(validateID),
			huh.NewInput().Title("Content ID").Value(&content).Validate(validateID),
			huh.NewInput().Title("Integration ID").Value(&integration).Validate(validateID),
		),
	)

	var baseTheme *huh.Theme = huh.ThemeBase()

	err := form.WithTheme(baseTheme).Run()

	if err != nil {
		return fmt.Errorf("failed to run interactive prompt: %w", err)
	}

	// Already validated by the form
	tCfg.Tenant, _ = strconv.ParseInt(tenant, 10, 64)
	tCfg.Content, _ = strconv.ParseInt(content, 10, 64)
	tCfg.Integration, _ = strconv.ParseInt(integration, 10, 64)

	return nil
}

func publishContent(client *http.Client, cfg PublishConfig) (publishResponse, error) {
	body, err := json.Marshal(map[string]int64{"integrationId": cfg.Integration})

	if err != nil {
		return publishResponse{}, err
	}

	endpoint := fmt.Sprintf("%s/api/content/%d/publish", strings.TrimRight(cfg.AppURL, "/"), cfg.Content)

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))

	if err != nil {
		return publishResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.RemoteUserHeader, cfg.Username)
	req.Header.Set(middleware.RemoteTenantHeader, strconv.FormatInt(cfg.Tenant, 10))

	resp, err := client.Do(req)

	if err != nil {
		return publishResponse{}, fmt.Errorf("failed to perform request: %w", err)
	}

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)

	if err != nil {
		return publishResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	var result publishResponse

	if err := json.Unmarshal(raw, &result); err != nil {
		return publishResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("publish failed with status %d: %s", resp.StatusCode, result.Message)
	}

	return result, nil
}

func validateID(s string) error {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return errors.New("must be a positive number")
	}
	return nil
}

func formatID(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
