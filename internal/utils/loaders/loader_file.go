package loaders

import (
	"github.com/rs/zerolog/log"
	"github.com/traefik/paerser/cli"
	"github.com/traefik/paerser/file"
	"github.com/traefik/paerser/flag"
)

type FileLoader struct{}

func (f *FileLoader) Load(args []string, cmd *cli.Command) (bool, error) {
	flags, err := flag.Parse(args, cmd.Configuration)

	if err != nil {
		return false, err
	}

	// paerser uses traefik as the root name
	configFileFlag := "traefik.configfile"

	if _, ok := flags["traefik.configFile"]; ok {
		configFileFlag = "traefik.configFile"
	}

	configFile, ok := flags[configFileFlag]

	if !ok || configFile == "" {
		return false, nil
	}

	log.Info().Str("file", configFile).Msg("Loading configuration file")

	err = file.Decode(configFile, cmd.Configuration)

	if err != nil {
		return false, err
	}

	return true, nil
}
