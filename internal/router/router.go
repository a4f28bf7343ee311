package router

import (
	"github.com/gin-gonic/gin"

	"billdoc/internal/handler"
	"billdoc/internal/metrics"
	"billdoc/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	m *metrics.Metrics,
	billH *handler.BillHandler,
	documentH *handler.DocumentHandler,
	generationH *handler.GenerationHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.Metrics(m))

	// Health checks and scraping
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := r.Group("/api/v1")

	// Bill extraction
	bills := v1.Group("/bills")
	bills.POST("/extract", billH.Extract)

	// Notice generation
	documents := v1.Group("/documents")
	documents.POST("", documentH.Generate)
	documents.POST("/render", documentH.Render)
	documents.POST("/from-bill", documentH.FromBill)

	// Generation history
	generations := v1.Group("/generations")
	generations.GET("", generationH.List)
	generations.GET("/export", generationH.Export)
	generations.GET("/:id", generationH.GetByID)

	return r
}
