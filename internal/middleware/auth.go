package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"teamhub/internal/config"
	"teamhub/internal/logger"
	"teamhub/internal/model"
	"teamhub/pkg/auth"
	"teamhub/pkg/response"
)

// JWTAuth JWT认证中间件
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearerToken(c, auth.AccessToken)
		if !ok {
			return
		}

		// 令牌临近过期时提示客户端刷新
		bufferTime := time.Duration(config.GlobalConfig.JWT.BufferSeconds) * time.Second
		if claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) < bufferTime {
			c.Header("X-Token-Expire-Soon", "true")
		}

		setClaimsContext(c, claims)
		c.Next()
	}
}

// RefreshAuth 刷新令牌认证中间件
func RefreshAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearerToken(c, auth.RefreshToken)
		if !ok {
			return
		}
		setClaimsContext(c, claims)
		c.Next()
	}
}

// AdminAuth 管理员校验中间件，须挂在JWTAuth之后
func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := GetUserRole(c)
		if !exists {
			response.Unauthorized(c, "未授权", nil)
			c.Abort()
			return
		}

		if role != model.RoleAdmin {
			response.Forbidden(c, "需要管理员权限", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RoleAuth 要求调用者角色具备访问指定角色资源的权限，须挂在JWTAuth之后
func RoleAuth(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := GetUserRole(c)
		if !exists {
			response.Unauthorized(c, "未授权", nil)
			c.Abort()
			return
		}

		if !model.IsAuthorized(requiredRole, role) {
			response.Forbidden(c, "权限不足", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// parseBearerToken 解析Authorization头中的Bearer令牌并校验类型
func parseBearerToken(c *gin.Context, expected auth.TokenType) (*auth.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c, "请先登录", nil)
		c.Abort()
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		response.Unauthorized(c, "Authorization格式错误", nil)
		c.Abort()
		return nil, false
	}

	claims, err := auth.ParseToken(parts[1])
	if err != nil {
		logger.Warnf("无效的令牌: %v", err)
		response.Unauthorized(c, "无效的令牌", err)
		c.Abort()
		return nil, false
	}

	if claims.Type != expected {
		logger.Warnf("使用了错误类型的令牌: %v", claims.Type)
		response.Unauthorized(c, "使用了错误类型的令牌", errors.New("令牌类型不匹配"))
		c.Abort()
		return nil, false
	}

	return claims, true
}

// setClaimsContext 将令牌声明写入请求上下文
func setClaimsContext(c *gin.Context, claims *auth.Claims) {
	c.Set("userID", claims.UserID)
	c.Set("userEmail", claims.Email)
	c.Set("userRole", claims.Role)
	c.Set("tokenID", claims.ID)
}

// GetUserID 从上下文中获取用户ID
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetUserEmail 从上下文中获取用户邮箱
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get("userEmail")
	if !exists {
		return "", false
	}
	return email.(string), true
}

// GetUserRole 从上下文中获取用户角色
func GetUserRole(c *gin.Context) (string, bool) {
	userRole, exists := c.Get("userRole")
	if !exists {
		return "", false
	}
	return userRole.(string), true
}
