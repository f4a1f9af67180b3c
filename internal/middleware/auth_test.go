package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "alice", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := parseToken(token, "secret")
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(42, "alice", "secret", time.Hour)
	require.NoError(t, err)

	_, err = parseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestCurrentUserResolution(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &JWTConfig{Secret: "secret", ExpireTime: time.Hour}

	router := gin.New()
	router.Use(CurrentUser(cfg))
	router.GET("/whoami", func(c *gin.Context) {
		if id, ok := GetUserID(c); ok {
			c.JSON(http.StatusOK, gin.H{"user_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"anonymous": true})
	})

	// No token: anonymous, not an error.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), "anonymous")

	// Garbage token: still anonymous.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), "anonymous")

	// Valid token resolves to the user id.
	token, err := GenerateToken(7, "alice", "secret", time.Hour)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}
