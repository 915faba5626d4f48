package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/BlackJack-14/taskManager/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UserResolver 将 token 中携带的用户 ID 解析成用户记录。
type UserResolver interface {
	UserByID(id int) (model.User, error)
}

// AuthMiddleware 校验 Bearer JWT，解析出用户并写入上下文。
//
// 失败时按原因返回四种 401：缺失/格式错误的头、验签失败、subject 不可解析、
// 用户不存在。一个能验签但指向已不存在用户的 token 同样无效。
func AuthMiddleware(jwtSecret string, users UserResolver) gin.HandlerFunc {
	secret := []byte(jwtSecret)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing or malformed (Bearer token expected)"})
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			c.Abort()
			return
		}

		uid, err := strconv.Atoi(claims.Subject)
		if err != nil || uid <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token payload"})
			c.Abort()
			return
		}

		user, err := users.UserByID(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token: User not found"})
			c.Abort()
			return
		}

		c.Set("userID", user.ID)
		c.Set("user", user)
		c.Next()
	}
}
