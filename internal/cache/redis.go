// Package cache — кэш виджетов блога в Redis по схеме cache-aside.
// Без адреса Redis кэш отключён: каждый вызов идёт напрямую в источник.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/BlogApp/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const (
	TotalPostsKey    = "blog:sidebar:total_posts"
	LatestPostsKey   = "blog:sidebar:latest:%d"
	MostCommentedKey = "blog:sidebar:most_commented:%d"
)

// SidebarKeys — ключи, которые сбрасываются при изменении постов или комментариев.
var SidebarKeys = []string{"blog:sidebar:*"}

// Cache оборачивает клиент Redis. Нулевой client означает отключённый кэш.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

type errorHook struct{}

func (errorHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (errorHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			metrics.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (errorHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			metrics.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// New подключается к Redis по URL или адресу host:port.
// Пустой addr возвращает отключённый кэш.
func New(ctx context.Context, addr string, logger *slog.Logger) (*Cache, error) {
	if addr == "" {
		logger.Info("redis address not set, sidebar cache disabled")
		return &Cache{logger: logger}, nil
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("redis connected successfully", "addr", opts.Addr)
	return NewWithClient(client, logger), nil
}

// NewWithClient оборачивает готовый клиент.
func NewWithClient(client *redis.Client, logger *slog.Logger) *Cache {
	if client != nil {
		client.AddHook(errorHook{})
	}
	return &Cache{client: client, logger: logger}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON читает ключ и раскладывает JSON в dest. found=false при промахе.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	s, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON сохраняет v в JSON под key на время ttl.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, ttl).Err()
}

// Aside сначала ищет значение в Redis, при промахе вызывает fetch (он должен заполнить dest)
// и сохраняет результат. Ошибки Redis не ломают запрос: значение берётся из источника.
func (c *Cache) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if !c.Enabled() {
		return fetch()
	}

	found, err := c.GetJSON(ctx, key, dest)
	switch {
	case err != nil:
		metrics.CacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("cache read failed, falling back to source", "key", key, "error", err)
	case found:
		metrics.CacheRequests.WithLabelValues("hit").Inc()
		return nil
	default:
		metrics.CacheRequests.WithLabelValues("miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}
	if err := c.SetJSON(ctx, key, dest, ttl); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return nil
}

// Invalidate удаляет ключи; шаблоны с '*' раскрываются через SCAN.
func (c *Cache) Invalidate(ctx context.Context, patterns ...string) {
	if !c.Enabled() {
		return
	}
	for _, p := range patterns {
		if !strings.Contains(p, "*") {
			c.client.Del(ctx, p)
			continue
		}
		iter := c.client.Scan(ctx, 0, p, 100).Iterator()
		for iter.Next(ctx) {
			c.client.Del(ctx, iter.Val())
		}
		if err := iter.Err(); err != nil {
			c.logger.Warn("cache invalidation failed", "pattern", p, "error", err)
		}
	}
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
