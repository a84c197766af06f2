package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tinypost/tinypost/internal/database"
	"github.com/tinypost/tinypost/internal/repository"
	"github.com/tinypost/tinypost/internal/service"
	"github.com/tinypost/tinypost/internal/utils"
	"github.com/tinypost/tinypost/internal/utils/tlog"

	"github.com/redis/go-redis/v9"
)

func (app *BootstrapApp) SetupDatabase(databasePath string) (*sql.DB, error) {
	tlog.App.Debug().Str("path", databasePath).Msg("Opening database")
	return database.Open(databasePath)
}

func (app *BootstrapApp) setupHandshakeStore(queries *repository.Queries) (service.HandshakeStore, error) {
	switch app.config.Handshake.Store {
	case "", "database":
		return service.NewDatabaseHandshakeStore(queries), nil
	case "redis":
		client, err := app.setupRedis()
		if err != nil {
			return nil, err
		}
		return service.NewRedisHandshakeStore(client), nil
	default:
		return nil, fmt.Errorf("unknown handshake store: %s", app.config.Handshake.Store)
	}
}

func (app *BootstrapApp) setupRedis() (redis.UniversalClient, error) {
	if app.config.Redis.Address == "" {
		return nil, fmt.Errorf("redis address is required for the redis handshake store")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.config.Redis.Address,
		Password: utils.GetSecret(app.config.Redis.Password, app.config.Redis.PasswordFile),
		DB:       app.config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	tlog.App.Info().Str("address", app.config.Redis.Address).Msg("Connected to redis")

	return client, nil
}
