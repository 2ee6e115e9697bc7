package handlers

import (
	"errors"
	"net/http"

	"pharmachat/models"
	"pharmachat/services/chat"
	"pharmachat/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler exposes the conversational turn as an HTTP endpoint.
type ChatHandler struct {
	Service  chat.ChatService
	Sessions chat.SessionStore
}

func NewChatHandler(svc chat.ChatService, sessions chat.SessionStore) *ChatHandler {
	return &ChatHandler{Service: svc, Sessions: sessions}
}

// HandleChatTurn processes one user message and returns the assistant reply.
func (h *ChatHandler) HandleChatTurn(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid chat request", err.Error())
		return
	}

	resp, err := h.Service.ProcessTurn(c.Request.Context(), req)
	if err != nil {
		utils.GetLogger().Error("chat turn failed",
			zap.String("sessionId", req.SessionID), zap.Error(err))
		var chatErr *chat.ChatError
		if errors.As(err, &chatErr) {
			utils.JSONError(c, http.StatusServiceUnavailable, "Could not process message", "Please try again.")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "Could not process message", "Please try again.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResetSessionHandler drops all conversational state for a session, giving the
// caller a clean slate without waiting for the Redis TTL.
func (h *ChatHandler) ResetSessionHandler(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if err := h.Sessions.Clear(c.Request.Context(), sessionID); err != nil {
		utils.GetLogger().Error("session reset failed",
			zap.String("sessionId", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Could not reset session", "Please try again.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
