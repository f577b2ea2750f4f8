package identity

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shiftline/workforce-service/internal/domain"
)

// OverrideStore reads per-user permission overrides from the preference
// store. A nil result with nil error means no overrides exist for the user.
type OverrideStore interface {
	Lookup(ctx context.Context, userID string) (*domain.PermissionOverrides, error)
}

const overrideKeyPrefix = "perm_overrides:"

type redisOverrideStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisOverrideStore returns an OverrideStore backed by Redis. Records
// are JSON values under "perm_overrides:<userID>".
func NewRedisOverrideStore(client *redis.Client, logger *zap.Logger) OverrideStore {
	return &redisOverrideStore{client: client, logger: logger}
}

func (s *redisOverrideStore) Lookup(ctx context.Context, userID string) (*domain.PermissionOverrides, error) {
	raw, err := s.client.Get(ctx, overrideKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var overrides domain.PermissionOverrides
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		// A corrupt record must never block a request; treat it as absent.
		s.logger.Warn("discarding malformed permission override record",
			zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	}
	return &overrides, nil
}
