// Package server exposes the council over HTTP: conversation CRUD, the
// synchronous full-pipeline endpoint, and its SSE streaming variant.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"llm-quorum/internal/config"
	"llm-quorum/internal/council"
	"llm-quorum/internal/storage"
	"llm-quorum/internal/webfetch"
)

// Server wires the pipeline, store and fetcher behind a gin engine.
type Server struct {
	cfg        config.ServerConfig
	store      *storage.Store
	pipeline   *council.Pipeline
	summarizer *council.Summarizer
	fetcher    *webfetch.Fetcher
	logger     *slog.Logger
	engine     *gin.Engine
}

// New builds the router and registers all routes.
func New(cfg config.ServerConfig, store *storage.Store, pipeline *council.Pipeline, summarizer *council.Summarizer, fetcher *webfetch.Fetcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:        cfg,
		store:      store,
		pipeline:   pipeline,
		summarizer: summarizer,
		fetcher:    fetcher,
		logger:     logger,
	}

	engine := gin.Default()

	engine.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxRequestBody)
		c.Next()
	})

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc:  s.allowOrigin,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))

	engine.GET("/", s.health)
	engine.GET("/api/conversations", s.listConversations)
	engine.POST("/api/conversations", s.createConversation)
	engine.GET("/api/conversations/:id", s.getConversation)
	engine.POST("/api/conversations/:id/message", s.sendMessage)
	engine.POST("/api/conversations/:id/message/stream", s.sendMessageStream)
	engine.POST("/api/fetch-url", s.fetchURL)

	s.engine = engine
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run blocks serving HTTP.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	s.logger.Info("starting server", "addr", addr)
	return s.engine.Run(addr)
}

// allowOrigin accepts configured origins when set, otherwise any localhost
// origin for development.
func (s *Server) allowOrigin(origin string) bool {
	if len(s.cfg.AllowedOrigins) > 0 {
		for _, allowed := range s.cfg.AllowedOrigins {
			if origin == allowed {
				return true
			}
		}
		return false
	}
	return strings.HasPrefix(origin, "http://localhost") || strings.HasPrefix(origin, "http://127.0.0.1")
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "LLM Quorum API",
	})
}
