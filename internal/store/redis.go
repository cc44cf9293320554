package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chatrelay-backend/internal/models"
)

const (
	redisUsersKey    = "users"
	redisHistoryKey  = "history:"
	redisPingTimeout = 10 * time.Second
)

// RedisStore implements both UserStore and HistoryStore on a Redis
// instance: users live in one hash, each conversation in its own list.
// Unlike the file backend, appends here are atomic per command.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Create(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	ok, err := s.client.HSetNX(ctx, redisUsersKey, user.Username, data).Result()
	if err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	if !ok {
		return ErrUserExists
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, username string) (*models.User, error) {
	data, err := s.client.HGet(ctx, redisUsersKey, username).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to parse user record: %w", err)
	}
	return &user, nil
}

func (s *RedisStore) Append(ctx context.Context, username string, turns ...models.Turn) error {
	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		values = append(values, data)
	}
	if err := s.client.RPush(ctx, redisHistoryKey+username, values...).Err(); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, username string, n int) ([]models.Turn, error) {
	items, err := s.client.LRange(ctx, redisHistoryKey+username, int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	turns := make([]models.Turn, 0, len(items))
	for _, item := range items {
		var t models.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("failed to parse history entry: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *RedisStore) Clear(ctx context.Context, username string) error {
	if err := s.client.Del(ctx, redisHistoryKey+username).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
