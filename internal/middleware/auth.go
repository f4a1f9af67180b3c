package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/warbler-social/warbler/internal/repository"
)

// AccessUnauthorized is the fixed body every refused request carries.
const AccessUnauthorized = "Access unauthorized"

const userIDKey = "current_user_id"

type JWTConfig struct {
	Secret     string
	ExpireTime time.Duration
}

type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func GenerateToken(userID uint, username, secret string, expireTime time.Duration) (string, error) {
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expireTime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// CurrentUser resolves the bearer token, when one is presented, into the
// current user id on the request context. A missing or invalid token just
// leaves the request anonymous; refusing is RequireUser's job.
func CurrentUser(cfg *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		claims, err := parseToken(strings.TrimPrefix(header, "Bearer "), cfg.Secret)
		if err != nil {
			c.Next()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// RequireUser is the gate in front of every mutating or privacy-sensitive
// route. Anonymous requests are refused, and so are requests whose token
// names a user that no longer exists: a stale session is anonymous too.
func RequireUser(userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": AccessUnauthorized})
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": AccessUnauthorized})
			return
		}

		c.Next()
	}
}

// GetUserID reads the current user id the middleware resolved for this
// request. ok is false on anonymous requests.
func GetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
