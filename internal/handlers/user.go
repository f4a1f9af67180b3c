package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/warbler-social/warbler/internal/middleware"
	"github.com/warbler-social/warbler/internal/services"
)

type UserHandler struct {
	identity *services.IdentityService
	social   *services.SocialGraphService
	jwtCfg   *middleware.JWTConfig
}

func NewUserHandler(identity *services.IdentityService, social *services.SocialGraphService, jwtCfg *middleware.JWTConfig) *UserHandler {
	return &UserHandler{
		identity: identity,
		social:   social,
		jwtCfg:   jwtCfg,
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.identity.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.jwtCfg.Secret, h.jwtCfg.ExpireTime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.identity.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.jwtCfg.Secret, h.jwtCfg.ExpireTime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	user, err := h.identity.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	followers, err := h.social.CountFollowers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	following, err := h.social.CountFollowing(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"followers": followers,
		"following": following,
	})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.identity.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type deleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// DeleteAccount re-verifies the password before the destructive step.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req deleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.identity.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	ok, err := h.identity.VerifyPassword(c.Request.Context(), user.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": middleware.AccessUnauthorized})
		return
	}

	if err := h.identity.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")

	offset, limit := 0, 20
	params := struct {
		Offset int `form:"offset"`
		Limit  int `form:"limit"`
	}{}
	if err := c.ShouldBindQuery(&params); err == nil {
		offset = params.Offset
		if params.Limit > 0 {
			limit = params.Limit
		}
		if limit > 100 {
			limit = 100
		}
	}

	users, err := h.identity.Search(c.Request.Context(), query, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) Follow(c *gin.Context) {
	followerID, _ := middleware.GetUserID(c)

	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.social.Follow(c.Request.Context(), followerID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "followed"})
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	followerID, _ := middleware.GetUserID(c)

	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.social.Unfollow(c.Request.Context(), followerID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "unfollowed"})
}

func (h *UserHandler) GetFollowers(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	followers, err := h.social.Followers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"followers": followers})
}

func (h *UserHandler) GetFollowing(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	following, err := h.social.Following(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": following})
}
