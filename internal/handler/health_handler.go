package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"billdoc/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db              *sqlx.DB
	templates       port.TemplateSource
	defaultTemplate string
}

// NewHealthHandler creates a new HealthHandler. templates may be nil to skip the template check.
func NewHealthHandler(db *sqlx.DB, templates port.TemplateSource, defaultTemplate string) *HealthHandler {
	return &HealthHandler{db: db, templates: templates, defaultTemplate: defaultTemplate}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The service is ready once the database answers
// and the default template can be loaded.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}
	if h.templates != nil && h.defaultTemplate != "" {
		if _, err := h.templates.Load(ctx, h.defaultTemplate); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "default template not loadable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
