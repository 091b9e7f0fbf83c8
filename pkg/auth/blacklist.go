package auth

import (
	"sync"
	"time"
)

// TokenBlacklist 令牌黑名单接口
type TokenBlacklist interface {
	// AddToBlacklist 将令牌加入黑名单直到其过期时间
	AddToBlacklist(token string, expireAt time.Time) error
	// IsBlacklisted 检查令牌是否已被撤销
	IsBlacklisted(token string) bool
}

var (
	currentBlacklist TokenBlacklist
	blacklistMutex   sync.RWMutex
)

// UseBlacklist 设置黑名单实现（启动时注入Redis实现，缺省为内存实现）
func UseBlacklist(b TokenBlacklist) {
	blacklistMutex.Lock()
	defer blacklistMutex.Unlock()
	currentBlacklist = b
}

// GetTokenBlacklist 获取当前黑名单实现
func GetTokenBlacklist() TokenBlacklist {
	blacklistMutex.RLock()
	b := currentBlacklist
	blacklistMutex.RUnlock()
	if b != nil {
		return b
	}

	blacklistMutex.Lock()
	defer blacklistMutex.Unlock()
	if currentBlacklist == nil {
		currentBlacklist = NewMemoryTokenBlacklist()
	}
	return currentBlacklist
}

// MemoryTokenBlacklist 内存令牌黑名单，适用于单实例部署和测试
type MemoryTokenBlacklist struct {
	tokens map[string]time.Time
	mutex  sync.RWMutex
}

// NewMemoryTokenBlacklist 创建内存黑名单
func NewMemoryTokenBlacklist() *MemoryTokenBlacklist {
	return &MemoryTokenBlacklist{
		tokens: make(map[string]time.Time),
	}
}

// AddToBlacklist 将令牌加入黑名单
func (b *MemoryTokenBlacklist) AddToBlacklist(token string, expireAt time.Time) error {
	if time.Until(expireAt) <= 0 {
		return nil // 已过期的令牌无需记录
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.tokens[token] = expireAt
	// 顺带清理已过期条目
	now := time.Now()
	for t, exp := range b.tokens {
		if now.After(exp) {
			delete(b.tokens, t)
		}
	}
	return nil
}

// IsBlacklisted 检查令牌是否在黑名单中
func (b *MemoryTokenBlacklist) IsBlacklisted(token string) bool {
	b.mutex.RLock()
	expireAt, exists := b.tokens[token]
	b.mutex.RUnlock()
	if !exists {
		return false
	}
	if time.Now().After(expireAt) {
		b.mutex.Lock()
		delete(b.tokens, token)
		b.mutex.Unlock()
		return false
	}
	return true
}
