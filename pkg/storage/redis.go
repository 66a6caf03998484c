package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"umchat/pkg/dialog"
	"umchat/pkg/logger"
)

const redisOpTimeout = 5 * time.Second

// RedisStore keeps widget state server-side, keyed per user, for
// gateway-style deployments.
type RedisStore struct {
	client *redis.Client
	userID string
	limit  int
}

func NewRedisStore(url, userID string, limit int) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore{client: client, userID: userID, limit: limit}, nil
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

func (rs *RedisStore) entriesKey() string {
	return "umchat:cards:" + rs.userID
}

func (rs *RedisStore) userStateKey() string {
	return "umchat:state:" + rs.userID
}

func (rs *RedisStore) LoadEntries() ([]dialog.DisplayEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := rs.client.Get(ctx, rs.entriesKey()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []dialog.DisplayEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.DebugCF("storage", "Discarding corrupt history key", map[string]interface{}{
			logger.FieldError:  err.Error(),
			logger.FieldUserID: rs.userID,
		})
		return nil, nil
	}
	return entries, nil
}

func (rs *RedisStore) SaveEntries(entries []dialog.DisplayEntry) error {
	data, err := json.Marshal(clampEntries(entries, rs.limit))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return rs.client.Set(ctx, rs.entriesKey(), data, 0).Err()
}

func (rs *RedisStore) ClearEntries() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return rs.client.Del(ctx, rs.entriesKey()).Err()
}

func (rs *RedisStore) LoadUserState() (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := rs.client.Get(ctx, rs.userStateKey()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

func (rs *RedisStore) SaveUserState(state json.RawMessage) error {
	if len(state) == 0 {
		return rs.ClearUserState()
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return rs.client.Set(ctx, rs.userStateKey(), []byte(state), 0).Err()
}

func (rs *RedisStore) ClearUserState() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return rs.client.Del(ctx, rs.userStateKey()).Err()
}
