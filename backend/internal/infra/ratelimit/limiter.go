/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-10 17:01:17
 * @FilePath: \isizulu-corpus\backend\internal\infra\ratelimit\limiter.go
 * @LastEditTime: 2025-10-14 10:44:50
 */
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AllowResult 描述限流请求的结果。
type AllowResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Remaining  int
}

// Limiter 定义限流器的通用能力。
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (AllowResult, error)
}

// Key 以 scope:subject 形式拼接限流 key，例如 search:203.0.113.7。
func Key(scope, subject string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "anonymous"
	}
	return scope + ":" + subject
}

// New 在提供 Redis 客户端时返回 RedisLimiter，否则退化为进程内计数。
func New(client *redis.Client, prefix string) Limiter {
	if client == nil {
		return NewMemoryLimiter()
	}
	return NewRedisLimiter(client, prefix)
}

// RedisLimiter 使用 Redis 实现简单的计数限流，多实例部署时共享窗口。
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter 根据 Redis 客户端构造限流器，可自定义 key 前缀。
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "corpus:ratelimit"
	}
	return &RedisLimiter{client: client, prefix: prefix}
}

// Allow 以 Redis 计数器实现固定窗口限流，返回是否放行、剩余次数与等待时间。
func (r *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (AllowResult, error) {
	if limit <= 0 {
		return AllowResult{Allowed: true, Remaining: -1}, nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if r == nil || r.client == nil {
		return AllowResult{Allowed: true, Remaining: -1}, nil
	}

	namespaced := r.prefix + ":" + key
	value, err := r.client.Incr(ctx, namespaced).Result()
	if err != nil {
		return AllowResult{}, err
	}
	// 仅在窗口首次创建时设置过期时间，持续请求不会延长窗口。
	if value == 1 {
		if err := r.client.Expire(ctx, namespaced, window).Err(); err != nil {
			return AllowResult{}, err
		}
	}

	count := int(value)
	if count <= limit {
		return AllowResult{Allowed: true, Remaining: limit - count}, nil
	}

	ttl, err := r.client.TTL(ctx, namespaced).Result()
	if err != nil {
		return AllowResult{}, err
	}
	if ttl < 0 {
		ttl = window
	}
	return AllowResult{Allowed: false, RetryAfter: ttl, Remaining: 0}, nil
}

// MemoryLimiter 是 Redis 不可用时的替代方案，适用于本地模式与单元测试。
type MemoryLimiter struct {
	mu    sync.Mutex
	now   func() time.Time
	store map[string]window
}

type window struct {
	count   int
	expires time.Time
}

// NewMemoryLimiter 构建内存版限流器。
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{store: make(map[string]window), now: time.Now}
}

// Allow 通过内存 map 统计请求次数，模拟 Redis 的固定窗口限流行为。
func (m *MemoryLimiter) Allow(_ context.Context, key string, limit int, ttl time.Duration) (AllowResult, error) {
	if limit <= 0 {
		return AllowResult{Allowed: true, Remaining: -1}, nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	if m == nil {
		return AllowResult{Allowed: true, Remaining: -1}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	current, ok := m.store[key]
	if !ok || !now.Before(current.expires) {
		current = window{expires: now.Add(ttl)}
	}
	current.count++
	m.store[key] = current

	if current.count > limit {
		return AllowResult{Allowed: false, RetryAfter: current.expires.Sub(now), Remaining: 0}, nil
	}
	return AllowResult{Allowed: true, Remaining: limit - current.count}, nil
}
