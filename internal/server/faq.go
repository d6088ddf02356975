package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xaenox/faq-bot/internal/matcher"
	"github.com/xaenox/faq-bot/internal/storage"
	"go.uber.org/zap"
)

type faqRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
	Keywords string `json:"keywords"`
}

type faqUpdateRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Keywords string `json:"keywords"`
}

func (s *Server) handleCreateFAQ(c *gin.Context) {
	var req faqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := s.store.CreateFAQ(c.Request.Context(), req.Question, req.Answer, req.Keywords)
	if err != nil {
		s.logger.Error("Failed to create faq", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create faq"})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleListFAQs(c *gin.Context) {
	limit, offset := paginationParams(c, 100)

	entries, err := s.store.ListFAQs(c.Request.Context(), limit, offset)
	if err != nil {
		s.logger.Error("Failed to list faqs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list faqs"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleGetFAQ(c *gin.Context) {
	entry, err := s.store.GetFAQ(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrFAQNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "faq not found"})
			return
		}
		s.logger.Error("Failed to get faq", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get faq"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleUpdateFAQ(c *gin.Context) {
	var req faqUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := s.store.UpdateFAQ(c.Request.Context(), c.Param("id"), req.Question, req.Answer, req.Keywords)
	if err != nil {
		if errors.Is(err, storage.ErrFAQNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "faq not found"})
			return
		}
		s.logger.Error("Failed to update faq", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update faq"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleDeleteFAQ(c *gin.Context) {
	if err := s.store.DeleteFAQ(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, storage.ErrFAQNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "faq not found"})
			return
		}
		s.logger.Error("Failed to delete faq", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete faq"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleSearchFAQs(c *gin.Context) {
	query := c.Query("q")
	keywords := matcher.ExtractKeywords(query)
	if len(keywords) == 0 {
		c.JSON(http.StatusOK, []any{})
		return
	}

	entries, err := s.store.SearchFAQ(c.Request.Context(), keywords)
	if err != nil {
		s.logger.Error("Failed to search faqs", zap.Error(err), zap.String("query", query))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search faqs"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func paginationParams(c *gin.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
