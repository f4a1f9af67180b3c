package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/warbler-social/warbler/internal/middleware"
	"github.com/warbler-social/warbler/internal/services"
)

type MessageHandler struct {
	content    *services.ContentService
	engagement *services.EngagementService
	timeline   *services.TimelineService
}

func NewMessageHandler(content *services.ContentService, engagement *services.EngagementService, timeline *services.TimelineService) *MessageHandler {
	return &MessageHandler{
		content:    content,
		engagement: engagement,
		timeline:   timeline,
	}
}

func (h *MessageHandler) CreateMessage(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req services.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.content.CreateMessage(c.Request.Context(), userID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

func (h *MessageHandler) GetMessage(c *gin.Context) {
	messageID, ok := paramID(c, "id")
	if !ok {
		return
	}

	message, err := h.content.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}

	likeCount, err := h.engagement.LikeCount(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"message":    message,
		"like_count": likeCount,
	}
	if userID, authed := middleware.GetUserID(c); authed {
		liked, err := h.engagement.IsLiked(c.Request.Context(), userID, messageID)
		if err != nil {
			respondError(c, err)
			return
		}
		resp["liked"] = liked
	}

	c.JSON(http.StatusOK, resp)
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	messageID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.content.DeleteMessage(c.Request.Context(), messageID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}

func (h *MessageHandler) GetUserMessages(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	messages, err := h.content.MessagesByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// ToggleLike flips the like state and reports the side the toggle landed
// on, so the caller can render feedback without a second request.
func (h *MessageHandler) ToggleLike(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	messageID, ok := paramID(c, "id")
	if !ok {
		return
	}

	liked, err := h.engagement.ToggleLike(c.Request.Context(), userID, messageID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

func (h *MessageHandler) GetUserLikes(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	messages, err := h.engagement.LikedMessages(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *MessageHandler) GetHomeTimeline(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	messages, err := h.timeline.Home(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
