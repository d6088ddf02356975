package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xaenox/faq-bot/internal/engine"
	"github.com/xaenox/faq-bot/internal/storage"
	"go.uber.org/zap"
)

type sendMessageRequest struct {
	Content        string `json:"content" binding:"required"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_identifier"`
	Platform       string `json:"platform"`
}

type feedbackRequest struct {
	MessageID string `json:"message_id" binding:"required"`
	Helpful   *bool  `json:"is_helpful" binding:"required"`
	Comment   string `json:"comment"`
}

func (s *Server) handleSendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Platform == "" {
		req.Platform = "web"
	}

	result, err := s.engine.ProcessMessage(c.Request.Context(), engine.ChatRequest{
		UserID:         req.UserID,
		Platform:       req.Platform,
		ConversationID: req.ConversationID,
		Content:        req.Content,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		s.logger.Error("Failed to process message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetConversation(c *gin.Context) {
	id := c.Param("id")

	conv, err := s.store.GetConversation(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		s.logger.Error("Failed to get conversation", zap.Error(err), zap.String("conversation_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get conversation"})
		return
	}

	limit, offset := paginationParams(c, 50)
	messages, err := s.store.GetMessages(c.Request.Context(), id, limit, offset)
	if err != nil {
		s.logger.Error("Failed to get messages", zap.Error(err), zap.String("conversation_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": conv,
		"messages":     messages,
	})
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fb, err := s.engine.RecordFeedback(c.Request.Context(), req.MessageID, req.Helpful, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		case errors.Is(err, storage.ErrDuplicateFeedback):
			c.JSON(http.StatusConflict, gin.H{"error": "feedback already recorded"})
		default:
			s.logger.Error("Failed to record feedback", zap.Error(err), zap.String("message_id", req.MessageID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record feedback"})
		}
		return
	}

	c.JSON(http.StatusCreated, fb)
}
