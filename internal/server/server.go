// Package server exposes the reader-facing HTTP API: articles with filters,
// manual refresh, vocabulary, dictionary lookup, and the translation
// pass-through.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hsboy89/NewStep/internal/domain"
	"github.com/hsboy89/NewStep/internal/infrastructure/translate"
	"github.com/hsboy89/NewStep/internal/ports"
	"github.com/hsboy89/NewStep/internal/store"
	"github.com/hsboy89/NewStep/internal/usecase"
)

// Deps wires the state containers and collaborators into the API.
type Deps struct {
	News       *store.NewsStore
	Voca       *store.VocaStore
	Refresher  *usecase.Refresher
	Dictionary ports.Dictionary
	Translator ports.Translator
	Logger     *slog.Logger
}

// Server handles the local HTTP API consumed by the browser front end.
type Server struct {
	news       *store.NewsStore
	voca       *store.VocaStore
	refresher  *usecase.Refresher
	dictionary ports.Dictionary
	translator ports.Translator
	logger     *slog.Logger
}

// New constructs the API server.
func New(deps Deps) *Server {
	return &Server{
		news:       deps.News,
		voca:       deps.Voca,
		refresher:  deps.Refresher,
		dictionary: deps.Dictionary,
		translator: deps.Translator,
		logger:     deps.Logger,
	}
}

// Router constructs a Gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/articles", s.handleArticles)
	api.GET("/articles/:id", s.handleArticle)
	api.POST("/refresh", s.handleRefresh)
	api.GET("/dictionary/:word", s.handleDictionary)
	api.GET("/voca", s.handleVocaList)
	api.POST("/voca", s.handleVocaAdd)
	api.DELETE("/voca/:word", s.handleVocaRemove)
	api.POST("/translate", s.handleTranslate)

	return r
}

// corsMiddleware opens the API to the browser front end served from a
// different origin during development.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleArticles returns the filtered article view. Supplying level or
// category query parameters updates the store's filter state first.
func (s *Server) handleArticles(c *gin.Context) {
	if level, ok := c.GetQuery("level"); ok {
		if !validLevelFilter(level) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "level must be one of all, 1, 2, 3"})
			return
		}
		s.news.SetSelectedLevel(level)
	}
	if category, ok := c.GetQuery("category"); ok {
		s.news.SetSelectedCategory(category)
	}

	s.articlesResponse(c)
}

func (s *Server) articlesResponse(c *gin.Context) {
	articles := s.news.FilteredArticles()

	response := gin.H{
		"articles": articles,
		"count":    len(articles),
		"loading":  s.news.Loading(),
	}
	if msg := s.news.Err(); msg != "" {
		response["error"] = msg
	}
	if ts, ok := s.news.LastCheckedTime(); ok {
		response["lastCheckedTime"] = ts.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) handleArticle(c *gin.Context) {
	article, ok := s.news.ArticleByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, article)
}

// handleRefresh is the manual refresh trigger; it bypasses the cache TTL.
func (s *Server) handleRefresh(c *gin.Context) {
	s.refresher.Refresh(c.Request.Context())
	s.articlesResponse(c)
}

func (s *Server) handleDictionary(c *gin.Context) {
	def, err := s.dictionary.Lookup(c.Request.Context(), c.Param("word"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "dictionary lookup failed"})
		return
	}
	if def == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "word not found"})
		return
	}
	c.JSON(http.StatusOK, def)
}

func (s *Server) handleVocaList(c *gin.Context) {
	words := s.voca.Words()
	c.JSON(http.StatusOK, gin.H{"words": words, "count": len(words)})
}

func (s *Server) handleVocaAdd(c *gin.Context) {
	var entry domain.VocabularyEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if entry.Word == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "word is required"})
		return
	}

	if !s.voca.Add(c.Request.Context(), entry) {
		c.JSON(http.StatusConflict, gin.H{"error": "word already saved"})
		return
	}

	saved, _ := s.voca.Word(entry.Word)
	c.JSON(http.StatusCreated, saved)
}

func (s *Server) handleVocaRemove(c *gin.Context) {
	if !s.voca.Remove(c.Request.Context(), c.Param("word")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "word not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

type translateRequest struct {
	Query      string `json:"query"`
	SrcLang    string `json:"src_lang"`
	TargetLang string `json:"target_lang"`
}

// handleTranslate forwards the request to the upstream translation API and
// returns its JSON body verbatim, or the error envelope.
func (s *Server) handleTranslate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}
	if req.SrcLang == "" {
		req.SrcLang = "en"
	}
	if req.TargetLang == "" {
		req.TargetLang = "kr"
	}

	body, err := s.translator.Translate(c.Request.Context(), req.Query, req.SrcLang, req.TargetLang)
	if err != nil {
		s.translateError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

func (s *Server) translateError(c *gin.Context, err error) {
	if errors.Is(err, translate.ErrNoCredential) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API key is not configured"})
		return
	}

	var upstream *translate.UpstreamError
	if errors.As(err, &upstream) {
		s.logger.Error("translation upstream error", "status", upstream.StatusCode)
		c.JSON(upstream.StatusCode, gin.H{"error": "Translation failed", "details": upstream.Body})
		return
	}

	s.logger.Error("translation error", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func validLevelFilter(level string) bool {
	switch level {
	case domain.LevelAll, domain.Level1, domain.Level2, domain.Level3:
		return true
	}
	return false
}
