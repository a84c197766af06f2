package loaders

import (
	"fmt"
	"os"

	"github.com/tinypost/tinypost/internal/config"

	"github.com/traefik/paerser/cli"
	"github.com/traefik/paerser/env"
)

// EnvLoader reads TINYPOST_* variables, e.g. TINYPOST_LINKEDIN_CLIENTID
type EnvLoader struct{}

func (e *EnvLoader) Load(_ []string, cmd *cli.Command) (bool, error) {
	vars := env.FindPrefixedEnvVars(os.Environ(), config.DefaultNamePrefix, cmd.Configuration)
	if len(vars) == 0 {
		return false, nil
	}

	if err := env.Decode(vars, config.DefaultNamePrefix, cmd.Configuration); err != nil {
		return false, fmt.Errorf("failed to decode configuration from environment variables: %w", err)
	}

	return true, nil
}
