package api

import (
	"github.com/gin-gonic/gin"
	"github.com/relohub/relohub/internal/api/handler"
	"github.com/relohub/relohub/internal/api/middleware"
	"github.com/relohub/relohub/internal/logger"
	"github.com/relohub/relohub/internal/pipeline"
	"github.com/relohub/relohub/internal/repository"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	postings *repository.PostingRepository,
	pipe *pipeline.Pipeline,
	log *logger.Logger,
	mode string,
) *gin.Engine {
	// Set Gin mode
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(middleware.CORSConfig{AllowAllOrigins: true}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	postingHandler := handler.NewPostingHandler(postings)
	runHandler := handler.NewRunHandler(pipe, log)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Postings and review workflow
		v1.GET("/postings", postingHandler.ListPostings)
		v1.GET("/postings/:id", postingHandler.GetPosting)
		v1.POST("/postings/:id/approve", postingHandler.Approve)
		v1.POST("/postings/:id/publish", postingHandler.Publish)

		// Stats
		v1.GET("/stats", postingHandler.Stats)

		// Manual pipeline triggers
		v1.POST("/runs/search", runHandler.RunSearch)
		v1.POST("/runs/process", runHandler.RunProcess)
	}

	return r
}
