package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"teamhub/internal/logger"
)

const (
	// Redis键前缀
	blacklistKeyPrefix = "jwt:blacklist:"
)

// RedisTokenBlacklist Redis令牌黑名单实现，多实例部署共享
type RedisTokenBlacklist struct {
	redis *redis.Client
	ctx   context.Context
}

// NewRedisTokenBlacklist 创建Redis黑名单
func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		redis: client,
		ctx:   context.Background(),
	}
}

// AddToBlacklist 将令牌添加到黑名单，key随令牌过期自动淘汰
func (b *RedisTokenBlacklist) AddToBlacklist(token string, expireAt time.Time) error {
	duration := time.Until(expireAt)
	if duration <= 0 {
		return nil // 已过期的令牌无需添加
	}

	key := blacklistKeyPrefix + token
	if err := b.redis.Set(b.ctx, key, "1", duration).Err(); err != nil {
		logger.Error("添加令牌到Redis黑名单失败", zap.Error(err))
		return fmt.Errorf("添加令牌到黑名单失败: %w", err)
	}
	return nil
}

// IsBlacklisted 检查令牌是否在黑名单中
func (b *RedisTokenBlacklist) IsBlacklisted(token string) bool {
	key := blacklistKeyPrefix + token
	result, err := b.redis.Exists(b.ctx, key).Result()
	if err != nil {
		logger.Error("检查Redis黑名单失败", zap.Error(err))
		// Redis异常时放行，由令牌本身的过期时间兜底
		return false
	}
	return result > 0
}
