package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/tinypost/tinypost/internal/utils/tlog"

	"github.com/traefik/paerser/cli"
)

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func healthcheckCmd() *cli.Command {
	return &cli.Command{
		Name:          "healthcheck",
		Description:   "Perform a health check",
		Configuration: nil,
		Resources:     nil,
		AllowArg:      true,
		Run: func(args []string) error {
			tlog.NewSimpleLogger().Init()

			appUrl := os.Getenv("TINYPOST_APPURL")

			if len(args) > 0 {
				appUrl = args[0]
			}

			if appUrl == "" {
				return errors.New("TINYPOST_APPURL is not set and no argument was provided")
			}

			tlog.App.Info().Str("app_url", appUrl).Msg("Performing health check")

			client := &http.Client{
				Timeout: 30 * time.Second,
			}

			health, err := checkHealth(client, appUrl)

			if err != nil {
				return err
			}

			tlog.App.Info().Interface("response", health).Msg("tinypost is healthy")

			return nil
		},
	}
}

func checkHealth(client *http.Client, appUrl string) (healthResponse, error) {
	resp, err := client.Get(appUrl + "/api/health")

	if err != nil {
		return healthResponse{}, fmt.Errorf("failed to perform request: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return healthResponse{}, fmt.Errorf("service is not healthy, got: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)

	if err != nil {
		return healthResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	var health healthResponse

	err = json.Unmarshal(body, &health)

	if err != nil {
		return healthResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return health, nil
}
