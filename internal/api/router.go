// ABOUTME: Gin router for the fitplan HTTP API.
// ABOUTME: Wires CORS, request logging and the profile, plan and catalog routes.
package api

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/harperreed/fitplan/internal/planner"
	"github.com/harperreed/fitplan/internal/storage"
)

// Catalogs is the content source the API serves and can reload.
type Catalogs interface {
	planner.Catalogs
	Invalidate()
}

// Handler serves the HTTP API.
type Handler struct {
	planner  *planner.Planner
	repo     storage.Repository
	catalogs Catalogs
	logger   *slog.Logger
}

// NewHandler creates a handler. p must be built over the same repo and catalogs.
func NewHandler(p *planner.Planner, repo storage.Repository, catalogs Catalogs, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{planner: p, repo: repo, catalogs: catalogs, logger: logger}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/healthz", h.Health)

	users := r.Group("/users/:id")
	users.GET("/profile", h.GetProfile)
	users.PUT("/profile", h.PutProfile)
	users.POST("/plans/:date", h.GeneratePlan)
	users.GET("/plans/:date", h.GetPlan)
	users.POST("/plans/:date/swap", h.SwapMeal)
	users.POST("/plans/:date/water", h.LogWater)
	users.GET("/plans/:date/summary", h.Summary)

	r.GET("/rotation/:day", h.Rotation)
	r.POST("/content/reload", h.ReloadContent)

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}
