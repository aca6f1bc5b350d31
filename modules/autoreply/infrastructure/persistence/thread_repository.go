package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/conversation"
	"github.com/replyhub/replyhub/modules/autoreply/infrastructure/persistence/models"
	"github.com/replyhub/replyhub/pkg/composables"
)

// ThreadRepository keeps conversation threads in a per-tenant Redis
// hash. Threads are hot, short-lived state; Postgres stays the system
// of record for configuration only.
type ThreadRepository struct {
	redis  *redis.Client
	prefix string
}

func NewThreadRepository(redis *redis.Client) conversation.Repository {
	return &ThreadRepository{redis: redis, prefix: "autoreply:threads:v1"}
}

func (r *ThreadRepository) GetByID(ctx context.Context, id uuid.UUID) (conversation.Thread, error) {
	hashKey, err := r.hashKey(ctx)
	if err != nil {
		return nil, err
	}
	result, err := r.redis.HGet(ctx, hashKey, id.String()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, conversation.ErrThreadNotFound
		}
		return nil, err
	}
	var model models.Thread
	if err := json.Unmarshal([]byte(result), &model); err != nil {
		return nil, err
	}
	return ToDomainThread(model)
}

// GetByAddress scans the tenant's hash for a thread with the given
// sender address. Tenants hold at most a few thousand live threads, so
// a full hash read is acceptable here.
func (r *ThreadRepository) GetByAddress(ctx context.Context, address string) (conversation.Thread, error) {
	threads, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range threads {
		if t.Address() == address {
			return t, nil
		}
	}
	return nil, conversation.ErrThreadNotFound
}

func (r *ThreadRepository) Save(ctx context.Context, thread conversation.Thread) (conversation.Thread, error) {
	hashKey, err := r.hashKey(ctx)
	if err != nil {
		return nil, err
	}
	threadJson, err := json.Marshal(ToDBThread(thread))
	if err != nil {
		return nil, err
	}
	if err := r.redis.HSet(ctx, hashKey, thread.ID().String(), threadJson).Err(); err != nil {
		return nil, err
	}
	return thread, nil
}

func (r *ThreadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	hashKey, err := r.hashKey(ctx)
	if err != nil {
		return err
	}
	return r.redis.HDel(ctx, hashKey, id.String()).Err()
}

func (r *ThreadRepository) List(ctx context.Context) ([]conversation.Thread, error) {
	hashKey, err := r.hashKey(ctx)
	if err != nil {
		return nil, err
	}
	resultMap, err := r.redis.HGetAll(ctx, hashKey).Result()
	if err != nil {
		return nil, err
	}
	threads := make([]conversation.Thread, 0, len(resultMap))
	for _, value := range resultMap {
		var model models.Thread
		if err := json.Unmarshal([]byte(value), &model); err != nil {
			return nil, err
		}
		thread, err := ToDomainThread(model)
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

func (r *ThreadRepository) hashKey(ctx context.Context) (string, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:{%s}", r.prefix, tenantID.String()), nil
}
