package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"SignalDesk/internal/collector"
	"SignalDesk/internal/dashboard"
	"SignalDesk/internal/logger"
	"SignalDesk/internal/model"
	"SignalDesk/internal/strategy"
)

// Handler serves the dashboard over HTTP.
type Handler struct {
	svc *dashboard.Service
}

func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc}
}

// NewRouter builds a gin engine with recovery and all routes registered.
func NewRouter(svc *dashboard.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, NewHandler(svc))
	return r
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.GET("/signals/:coin", h.getSignal)
	v1.POST("/signals/evaluate", h.evaluate)
	v1.GET("/markets", h.markets)
	v1.GET("/news", h.news)
	v1.GET("/prefs/tier", h.getTier)
	v1.PUT("/prefs/tier", h.putTier)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, strategy.ErrInvalidSnapshot):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnknownTier):
		return http.StatusBadRequest
	case errors.Is(err, collector.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

func (h *Handler) getSignal(c *gin.Context) {
	view, err := h.svc.Signal(c.Request.Context(), c.Param("coin"), c.Query("tier"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) evaluate(c *gin.Context) {
	var snap model.MarketSnapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tier, err := h.svc.ResolveTier(string(snap.RiskTier))
	if err != nil {
		abort(c, err)
		return
	}
	snap.RiskTier = tier
	sig, err := h.svc.Evaluate(c.Request.Context(), snap)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signal": sig, "actionable": sig.Actionable()})
}

func (h *Handler) markets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"coins": h.svc.Markets(c.Request.Context())})
}

func (h *Handler) news(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.svc.News(c.Request.Context())})
}

func (h *Handler) getTier(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tier": h.svc.Prefs.Tier()})
}

type tierRequest struct {
	Tier string `json:"tier" binding:"required"`
}

func (h *Handler) putTier(c *gin.Context) {
	var req tierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tier, err := model.ParseRiskTier(req.Tier)
	if err == nil {
		err = h.svc.Prefs.SetTier(tier)
	}
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tier": tier})
}
