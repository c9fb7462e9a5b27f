package handlers

import (
	"net/http"
	"time"

	"property-catalog/internal/logger"
	"property-catalog/internal/ratelimit"
	"property-catalog/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries everything the HTTP router needs. Admin is nil when
// the backend has no purge support.
type RouterConfig struct {
	Repo           repository.PropertyRepo
	Limiter        *ratelimit.RateLimiter
	Admin          *AdminHandler
	Log            *logger.Logger
	AllowedOrigins []string
	RequestTimeout time.Duration
	LogRequests    bool
}

// NewRouter builds the gin engine with all routes registered
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID())
	if cfg.LogRequests {
		r.Use(RequestLogger(cfg.Log))
	}
	r.Use(RequestTimeout(cfg.RequestTimeout))

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "HEAD", "POST", "PUT", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader, "Location"},
			AllowCredentials: true,
		}))
	}

	r.GET("/health", healthCheck)

	properties := NewPropertyHandler(cfg.Repo, cfg.Log)
	writeLimit := RateLimit(cfg.Limiter)

	api := r.Group("/api")
	{
		api.GET("/properties", properties.ListProperties)
		api.GET("/properties/options", properties.SearchOptions)
		api.GET("/properties/:id", properties.GetProperty)
		api.HEAD("/properties/:id", properties.HeadProperty)

		// Write routes with rate limiting
		api.POST("/properties", writeLimit, properties.CreateProperty)
		api.PUT("/properties/:id", writeLimit, properties.UpdateProperty)
		api.DELETE("/properties/:id", writeLimit, properties.DeleteProperty)
		api.POST("/properties/:id/images", writeLimit, properties.AddImage)
		api.DELETE("/properties/:id/images/:imageId", writeLimit, properties.RemoveImage)

		api.GET("/ratelimit/stats", RateLimitStats(cfg.Limiter))
	}

	// Admin API routes (requires authentication in production)
	if cfg.Admin != nil {
		admin := api.Group("/admin")
		{
			admin.GET("/stats", cfg.Admin.GetStats)
			admin.POST("/cleanup/run", cfg.Admin.RunCleanup)
			admin.GET("/cleanup/logs", cfg.Admin.GetPurgeLogs)
		}
		cfg.Log.Info("admin API routes registered at /api/admin/*")
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
