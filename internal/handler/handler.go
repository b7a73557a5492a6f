package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-service/internal/dashboard"
	"persona-service/internal/models"
	"persona-service/internal/service"
)

// Handler handles HTTP requests
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Messages []models.Message `json:"messages" binding:"required"`
}

// ClassifyRequest is the body of POST /api/classify.
type ClassifyRequest struct {
	Keywords    []string `json:"keywords"`
	Description string   `json:"description"`
	Messages    []string `json:"messages"`
}

// AskRequest is the body of POST /api/ask_bot.
type AskRequest struct {
	Query     string `json:"query" binding:"required"`
	PersonaID string `json:"persona_id"`
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		// Personas
		api.GET("/personas", h.ListPersonas)
		api.GET("/personas/:id", h.GetPersona)
		api.GET("/personas/:id/messages", h.GetPersonaMessages)
		api.GET("/personas/:id/analysis", h.GetPersonaAnalysis)

		// Conversations
		api.GET("/conversations", h.ListConversations)
		api.GET("/conversations/:id", h.GetConversation)
		api.GET("/conversations/:id/analysis", h.GetConversationAnalysis)

		// Ad-hoc scoring
		api.POST("/analyze", h.Analyze)
		api.POST("/classify", h.Classify)

		// Overview
		api.GET("/dashboard", h.GetDashboard)
		api.GET("/similarity", h.GetSimilarity)

		api.POST("/ask_bot", h.AskBot)
		api.POST("/reload", h.Reload)
	}

	// Health check
	r.GET("/health", h.HealthCheck)
}

// ListPersonas returns profiles matching the query filters
func (h *Handler) ListPersonas(c *gin.Context) {
	filter := dashboard.PersonaFilter{
		Query:    c.Query("q"),
		Type:     c.Query("type"),
		Platform: c.Query("platform"),
	}
	var ok bool
	if filter.MinRisk, ok = floatQuery(c, "min_risk"); !ok {
		return
	}
	if filter.MaxRisk, ok = floatQuery(c, "max_risk"); !ok {
		return
	}

	personas, err := h.svc.Personas(filter)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"personas": personas,
		"total":    len(personas),
	})
}

// GetPersona returns one profile; the ID may be in any accepted form
func (h *Handler) GetPersona(c *gin.Context) {
	persona, err := h.svc.Persona(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, persona)
}

func (h *Handler) GetPersonaMessages(c *gin.Context) {
	messages, err := h.svc.PersonaMessages(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"total":    len(messages),
	})
}

func (h *Handler) GetPersonaAnalysis(c *gin.Context) {
	analysis, err := h.svc.PersonaAnalysis(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// ListConversations returns conversation logs matching the query filters
func (h *Handler) ListConversations(c *gin.Context) {
	conversations, err := h.svc.Conversations(dashboard.ConversationFilter{
		Query:    c.Query("q"),
		Platform: c.Query("platform"),
		Outcome:  c.Query("outcome"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": conversations,
		"total":         len(conversations),
	})
}

func (h *Handler) GetConversation(c *gin.Context) {
	conversation, err := h.svc.Conversation(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, conversation)
}

func (h *Handler) GetConversationAnalysis(c *gin.Context) {
	analysis, err := h.svc.ConversationAnalysis(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// Analyze scores an ad-hoc message list
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.svc.Analyze(req.Messages))
}

// Classify labels keywords, description and message texts
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"type": h.svc.Classify(req.Keywords, req.Description, req.Messages),
	})
}

func (h *Handler) GetDashboard(c *gin.Context) {
	stats, err := h.svc.Dashboard()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetSimilarity(c *gin.Context) {
	graph, err := h.svc.Similarity()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, graph)
}

// AskBot answers an analyst question
func (h *Handler) AskBot(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.svc.Ask(c.Request.Context(), req.Query, req.PersonaID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Reload rebuilds the snapshot from the configured sources
func (h *Handler) Reload(c *gin.Context) {
	snap, err := h.svc.Reload(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to reload snapshot", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot":      snap,
		"personas":      len(snap.Personas),
		"conversations": len(snap.Conversations),
	})
}

// HealthCheck reports liveness and the loaded snapshot
func (h *Handler) HealthCheck(c *gin.Context) {
	snap, err := h.svc.Current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"snapshot": snap,
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPersonaNotFound), errors.Is(err, service.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotLoaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func floatQuery(c *gin.Context, key string) (float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, false
	}
	return v, true
}
