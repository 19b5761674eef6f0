// Package cache реализует кеш сессий поверх Redis: id пользователя ->
// сериализованный профиль. Кеш это write-through зеркало каталога
// пользователей: он обновляется после мутаций по мере возможности,
// источником истины для персистентных данных всегда остается MongoDB.
// Для сессий наоборот: запись в кеше и есть признак живой сессии.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/madac4/doCreate-server/internal/domain"
)

// SessionStore определяет операции кеша сессий
type SessionStore interface {
	// Get возвращает пользователя по id или domain.ErrUserNotFound
	Get(ctx context.Context, userID string) (*domain.User, error)

	// Set сохраняет профиль пользователя под его id
	Set(ctx context.Context, user *domain.User) error

	// Delete удаляет сессию пользователя
	Delete(ctx context.Context, userID string) error
}

// RedisSessionStore реализует SessionStore поверх Redis
type RedisSessionStore struct {
	client *redis.Client
}

// New подключается к Redis и возвращает готовый кеш сессий
func New(ctx context.Context, redisURL string) (*RedisSessionStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisSessionStore{client: client}, nil
}

// Get возвращает пользователя по id или domain.ErrUserNotFound
func (s *RedisSessionStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	payload, err := s.client.Get(ctx, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal([]byte(payload), &user); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &user, nil
}

// Set сохраняет профиль пользователя под его id. Сессии не имеют TTL:
// они живут до logout или явного удаления.
func (s *RedisSessionStore) Set(ctx context.Context, user *domain.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	return s.client.Set(ctx, user.ID.Hex(), payload, 0).Err()
}

// Delete удаляет сессию пользователя
func (s *RedisSessionStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, userID).Err()
}

// Close закрывает подключение к Redis
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
