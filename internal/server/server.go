package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/xaenox/faq-bot/internal/engine"
	"github.com/xaenox/faq-bot/internal/storage"
	"go.uber.org/zap"
)

// Server is the HTTP surface over the engine and the FAQ store. It owns
// request validation and the mapping from engine error kinds to status
// codes; the engine itself never sees a transport concern.
type Server struct {
	engine *engine.Engine
	store  storage.Storage
	logger *zap.Logger
	router *gin.Engine
}

func New(eng *engine.Engine, store storage.Storage, logger *zap.Logger) *Server {
	s := &Server{
		engine: eng,
		store:  store,
		logger: logger,
		router: gin.Default(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	chat := s.router.Group("/api/chat")
	{
		chat.POST("/send", s.handleSendMessage)
		chat.GET("/conversation/:id", s.handleGetConversation)
		chat.POST("/feedback", s.handleFeedback)
	}

	faq := s.router.Group("/api/faq")
	{
		faq.POST("", s.handleCreateFAQ)
		faq.GET("", s.handleListFAQs)
		faq.GET("/search", s.handleSearchFAQs)
		faq.GET("/:id", s.handleGetFAQ)
		faq.PUT("/:id", s.handleUpdateFAQ)
		faq.DELETE("/:id", s.handleDeleteFAQ)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

func (s *Server) Run(host string, port int) error {
	return s.router.Run(fmt.Sprintf("%s:%d", host, port))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok", "service": "faq-bot"})
}
