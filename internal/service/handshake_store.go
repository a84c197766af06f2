package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tinypost/tinypost/internal/model"
	"github.com/tinypost/tinypost/internal/repository"

	"github.com/redis/go-redis/v9"
)

type DatabaseHandshakeStore struct {
	queries *repository.Queries
}

var _ HandshakeStore = (*DatabaseHandshakeStore)(nil)

func NewDatabaseHandshakeStore(queries *repository.Queries) *DatabaseHandshakeStore {
	return &DatabaseHandshakeStore{queries: queries}
}

func (s *DatabaseHandshakeStore) Save(ctx context.Context, sessionID string, handshake model.Handshake) error {
	return s.queries.SaveHandshake(ctx, repository.SaveHandshakeParams{
		SessionID:    sessionID,
		State:        handshake.State,
		CodeVerifier: handshake.CodeVerifier,
		TenantID:     handshake.TenantID,
		Platform:     handshake.Platform,
		ExpiresAt:    handshake.ExpiresAt.Unix(),
		CreatedAt:    time.Now().Unix(),
	})
}

// Pull deletes and returns the row in one statement so two callbacks can never both read it
func (s *DatabaseHandshakeStore) Pull(ctx context.Context, sessionID string) (*model.Handshake, error) {
	row, err := s.queries.PullHandshake(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &model.Handshake{
		State:        row.State,
		CodeVerifier: row.CodeVerifier,
		TenantID:     row.TenantID,
		Platform:     row.Platform,
		ExpiresAt:    time.Unix(row.ExpiresAt, 0),
	}, nil
}

func (s *DatabaseHandshakeStore) DeleteExpired(ctx context.Context, now time.Time) error {
	return s.queries.DeleteExpiredHandshakes(ctx, now.Unix())
}

// RedisHandshakeStore keeps handshakes in redis with a TTL matching their expiry
type RedisHandshakeStore struct {
	client redis.UniversalClient
	prefix string
}

var _ HandshakeStore = (*RedisHandshakeStore)(nil)

func NewRedisHandshakeStore(client redis.UniversalClient) *RedisHandshakeStore {
	return &RedisHandshakeStore{
		client: client,
		prefix: "tinypost:handshake:",
	}
}

func (s *RedisHandshakeStore) Save(ctx context.Context, sessionID string, handshake model.Handshake) error {
	payload, err := json.Marshal(handshake)
	if err != nil {
		return fmt.Errorf("marshal handshake: %w", err)
	}

	ttl := time.Until(handshake.ExpiresAt)
	if ttl <= 0 {
		return errors.New("handshake already expired")
	}

	if err := s.client.Set(ctx, s.prefix+sessionID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist handshake: %w", err)
	}

	return nil
}

func (s *RedisHandshakeStore) Pull(ctx context.Context, sessionID string) (*model.Handshake, error) {
	payload, err := s.client.GetDel(ctx, s.prefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load handshake: %w", err)
	}

	var handshake model.Handshake
	if err := json.Unmarshal(payload, &handshake); err != nil {
		return nil, fmt.Errorf("decode handshake: %w", err)
	}

	return &handshake, nil
}
