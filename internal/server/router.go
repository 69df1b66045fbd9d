package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/dakshlabs/examgraph-backend/internal/handlers"
	"github.com/dakshlabs/examgraph-backend/internal/platform/envutil"
)

type RouterConfig struct {
	TaggingHandler     *handlers.TaggingHandler
	AnalyticsHandler   *handlers.AnalyticsHandler
	IngestionHandler   *handlers.IngestionHandler
	MaintenanceHandler *handlers.MaintenanceHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := strings.Split(envutil.Str("CORS_ALLOW_ORIGINS", "http://localhost:3000"), ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(otelgin.Middleware("examgraph-backend"))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Ingestion
		api.POST("/reports", cfg.IngestionHandler.IngestReport)

		// Tagging
		api.POST("/questions/:id/tag", cfg.TaggingHandler.TagQuestion)
		api.POST("/questions/tag-batch", cfg.TaggingHandler.BatchTag)
		api.GET("/questions/:id/tags", cfg.TaggingHandler.GetTags)

		// Analytics
		api.GET("/students/:id/analysis", cfg.AnalyticsHandler.GetStudentAnalysis)
		api.POST("/students/:id/analysis", cfg.AnalyticsHandler.RunStudentAnalysis)
		api.GET("/students/:id/summary", cfg.AnalyticsHandler.GetStudentSummary)
		api.GET("/students/:id/performance", cfg.AnalyticsHandler.GetStudentPerformance)
		api.GET("/cohorts/:name/analysis", cfg.AnalyticsHandler.GetCohortAnalysis)
		api.POST("/summaries/recompute", cfg.AnalyticsHandler.RecomputeSummaries)

		// Maintenance
		api.POST("/maintenance/repair-scan", cfg.MaintenanceHandler.RepairScan)
		api.POST("/maintenance/migrate-tags", cfg.MaintenanceHandler.MigrateTags)
	}

	return router
}
