package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"

	"teamhub/internal/config"
)

// TokenType 定义token类型
type TokenType string

const (
	// AccessToken 访问令牌，用于访问资源
	AccessToken TokenType = "access"
	// RefreshToken 刷新令牌，用于获取新的访问令牌
	RefreshToken TokenType = "refresh"
)

// Claims 自定义JWT声明结构体
type Claims struct {
	UserID uint      `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Type   TokenType `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair 包含访问令牌和刷新令牌
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // 访问令牌过期时间（秒）
	TokenID      string `json:"token_id"`
}

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

// generateTokenID 生成令牌唯一ID（jti）
func generateTokenID() string {
	snowflakeOnce.Do(func() {
		node, err := snowflake.NewNode(config.GlobalConfig.JWT.MachineID)
		if err != nil {
			panic(fmt.Sprintf("初始化snowflake节点失败: %v", err))
		}
		snowflakeNode = node
	})
	return snowflakeNode.Generate().String()
}

// GenerateTokenPair 生成访问令牌和刷新令牌对
func GenerateTokenPair(userID uint, email, role string, remember bool) (*TokenPair, error) {
	accessExpire := time.Duration(config.GlobalConfig.JWT.AccessExpireSeconds) * time.Second
	refreshExpire := time.Duration(config.GlobalConfig.JWT.RefreshExpireSeconds) * time.Second

	// 记住登录时延长有效期
	if remember {
		accessExpire = 7 * 24 * time.Hour
		refreshExpire = 30 * 24 * time.Hour
	}

	tokenID := generateTokenID()

	accessToken, err := generateToken(userID, email, role, AccessToken, accessExpire, tokenID)
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateToken(userID, email, role, RefreshToken, refreshExpire, tokenID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(accessExpire.Seconds()),
		TokenID:      tokenID,
	}, nil
}

// generateToken 创建指定类型的JWT令牌
func generateToken(userID uint, email, role string, tokenType TokenType, expiration time.Duration, tokenID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    config.GlobalConfig.JWT.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(config.GlobalConfig.JWT.SecretKey))
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseToken 解析JWT令牌
func ParseToken(tokenString string) (*Claims, error) {
	// 已撤销的令牌直接拒绝
	if GetTokenBlacklist().IsBlacklisted(tokenString) {
		return nil, errors.New("令牌已被撤销")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.GlobalConfig.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的令牌")
}

// RefreshAccessToken 使用刷新令牌获取新的令牌对，旧刷新令牌加入黑名单
func RefreshAccessToken(refreshTokenString string) (*TokenPair, error) {
	claims, err := ParseToken(refreshTokenString)
	if err != nil {
		return nil, err
	}

	if claims.Type != RefreshToken {
		return nil, errors.New("无效的刷新令牌")
	}

	pair, err := GenerateTokenPair(claims.UserID, claims.Email, claims.Role, false)
	if err != nil {
		return nil, err
	}

	// 旧刷新令牌失效，完成令牌轮换
	if claims.ExpiresAt != nil {
		if err := GetTokenBlacklist().AddToBlacklist(refreshTokenString, claims.ExpiresAt.Time); err != nil {
			return nil, err
		}
	}

	return pair, nil
}

// RevokeToken 撤销令牌（登出时使用）
func RevokeToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.GlobalConfig.JWT.SecretKey), nil
	})
	if err != nil {
		return err
	}

	if claims, ok := token.Claims.(*Claims); ok && claims.ExpiresAt != nil {
		return GetTokenBlacklist().AddToBlacklist(tokenString, claims.ExpiresAt.Time)
	}
	return errors.New("无效的令牌")
}
