package main

import (
	"fmt"

	"github.com/tinypost/tinypost/internal/bootstrap"
	"github.com/tinypost/tinypost/internal/config"
	"github.com/tinypost/tinypost/internal/utils/loaders"
	"github.com/tinypost/tinypost/internal/utils/tlog"

	"github.com/rs/zerolog/log"
	"github.com/traefik/paerser/cli"
)

func main() {
	tConfig := config.NewDefaultConfiguration()

	loaders := []cli.ResourceLoader{
		&loaders.FileLoader{},
		&loaders.FlagLoader{},
		&loaders.EnvLoader{},
	}

	cmdTinypost := &cli.Command{
		Name:          "tinypost",
		Description:   "Connect LinkedIn accounts and publish content for every tenant.",
		Configuration: tConfig,
		Resources:     loaders,
		Run: func(_ []string) error {
			return runCmd(*tConfig)
		},
	}

	err := cmdTinypost.AddCommand(versionCmd())

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add version command")
	}

	err = cmdTinypost.AddCommand(healthcheckCmd())

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add healthcheck command")
	}

	err = cmdTinypost.AddCommand(publishCmd())

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add publish command")
	}

	err = cli.Execute(cmdTinypost)

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to execute command")
	}
}

func runCmd(cfg config.Config) error {
	tlog.NewLogger(cfg.Log).Init()

	tlog.App.Info().Str("version", config.Version).Msg("Starting tinypost")

	app := bootstrap.NewBootstrapApp(cfg)

	err := app.Setup()

	if err != nil {
		return fmt.Errorf("failed to bootstrap app: %w", err)
	}

	return nil
}
