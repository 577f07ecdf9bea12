package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"pcparts_dev_v1/internal/model"
)

// ==================== JWT 配置 ====================

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey string        // 签名密钥
	TokenTTL  time.Duration // Token 有效期，固定 24 小时
	Issuer    string        // 签发者
}

// DefaultJWTConfig 默认配置，密钥必须在启动时通过 SetJWTConfig 注入
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		TokenTTL: 24 * time.Hour,
		Issuer:   "pcparts-shop",
	}
}

var jwtConfig = DefaultJWTConfig()

// SetJWTConfig 设置 JWT 配置
func SetJWTConfig(cfg *JWTConfig) {
	jwtConfig = cfg
}

// ==================== Claims 定义 ====================

// UserClaims 用户声明，id 为账号标识
type UserClaims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// ==================== Token 生成 / 解析 ====================

// GenerateToken 生成 Token
func GenerateToken(userID int64) (string, error) {
	now := time.Now()
	claims := &UserClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtConfig.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtConfig.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.SecretKey))
}

// ParseToken 解析 Token
func ParseToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(jwtConfig.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// ==================== Gin 中间件 ====================

// Context Keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyUser   = "user"
)

// UserResolver 校验 Token 携带的账号是否仍然存在
type UserResolver interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// JWTAuth JWT 认证中间件
// 缺头、格式错、签名无效、过期、账号不存在，全部返回同一个 401 响应，
// 不向调用方透露是哪一步失败
func JWTAuth(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthenticated(c)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthenticated(c)
			return
		}

		claims, err := ParseToken(parts[1])
		if err != nil {
			abortUnauthenticated(c)
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || user == nil {
			abortUnauthenticated(c)
			return
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
}

// ==================== 辅助函数 ====================

// CurrentUserID 从 Context 获取已验证的用户 ID
func CurrentUserID(c *gin.Context) int64 {
	if id, exists := c.Get(ContextKeyUserID); exists {
		return id.(int64)
	}
	return 0
}

// CurrentUser 从 Context 获取已验证的用户
func CurrentUser(c *gin.Context) *model.User {
	if u, exists := c.Get(ContextKeyUser); exists {
		return u.(*model.User)
	}
	return nil
}
