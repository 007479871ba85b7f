package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisConfig — параметры подключения к Redis.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
	ReadTimeout time.Duration
	MaxRetries  int
}

// RedisStore хранит данные и кэш в Redis. Повторы при сетевых сбоях
// и таймауты выполняет клиент go-redis.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisStore(cfg RedisConfig, logger *slog.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.ReadTimeout,
		MaxRetries:   cfg.MaxRetries,
	})
	return &RedisStore{client: client, logger: logger}
}

// Ping проверяет доступность сервера.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) CacheGet(ctx context.Context, key string) (string, bool) {
	v, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("cache get failed", slog.String("key", key), slog.Any("error", err))
		}
		return "", false
	}
	return v, true
}

func (s *RedisStore) CacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Warn("cache set failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
