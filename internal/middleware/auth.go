package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/wfunc/tictactoe-game/internal/config"
	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
)

// Claims JWT声明
// 令牌由外部认证服务签发，本服务只校验签名和有效期。
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthMiddleware 认证中间件
type AuthMiddleware struct {
	secret   []byte
	issuer   string
	required bool
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(cfg *config.JWTConfig) *AuthMiddleware {
	return &AuthMiddleware{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		required: cfg.Required,
	}
}

// RequireAuth 校验请求携带的Bearer令牌
// 未开启强制认证时直接放行，便于本地联调。
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.required {
			c.Next()
			return
		}

		token := extractToken(c)
		if token == "" {
			abortUnauthorized(c, apperrors.New(apperrors.ErrAuthentication, "缺少认证令牌"))
			return
		}

		claims, err := m.parseToken(token)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// parseToken 解析并校验令牌
func (m *AuthMiddleware) parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.New(apperrors.ErrTokenInvalid, "签名算法不匹配")
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Wrap(err, apperrors.ErrTokenExpired)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrTokenInvalid)
	}
	if !token.Valid {
		return nil, apperrors.New(apperrors.ErrTokenInvalid)
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return nil, apperrors.New(apperrors.ErrTokenInvalid, "签发方不匹配")
	}
	return claims, nil
}

// extractToken 从请求中提取令牌
// 优先取Authorization头，WebSocket握手时允许走query参数。
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

// abortUnauthorized 以401终止请求
func abortUnauthorized(c *gin.Context, err error) {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		appErr = apperrors.Wrap(err, apperrors.ErrAuthentication)
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.NewErrorResponse(appErr, c.GetString("request_id")))
}

// GetUserID 从上下文读取认证后的用户ID
func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
