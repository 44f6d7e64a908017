package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured. Read
// endpoints are public; every endpoint with a side effect sits behind the
// admin key middleware.
func NewServer(handler *Handler, adminAPIKey string, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())
	r.Use(corsMiddleware(corsOrigins))

	setupRoutes(r, handler, adminAPIKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, adminAPIKey string) {
	r.GET("/", handler.GetRoot)
	r.GET("/health", handler.GetHealth)

	api := r.Group("/api")
	{
		api.GET("/projects", handler.ListProjects)
		api.GET("/projects/:slug", handler.GetProject)
		api.GET("/stats", handler.GetStats)
		api.GET("/collect/logs", handler.GetCollectionLogs)
		api.GET("/scheduler/status", handler.SchedulerStatus)
		api.GET("/analysis/prompt/:slug", handler.GetAnalysisPrompt)
	}

	admin := r.Group("/api")
	admin.Use(authMiddleware(adminAPIKey))
	{
		admin.POST("/collect/:source", handler.TriggerCollect)
		admin.POST("/scheduler/start", handler.SchedulerStart)
		admin.POST("/scheduler/stop", handler.SchedulerStop)
		admin.POST("/scheduler/run-now", handler.SchedulerRunNow)
		admin.POST("/analysis/save/:slug", handler.SaveAnalysis)
		admin.POST("/analysis/run/:slug", handler.RunAnalysis)
		admin.POST("/projects/:slug/archive", handler.ArchiveProject)
	}

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware gates write endpoints behind the admin API key. The check
// runs before any handler, so a rejected request has no side effects.
func authMiddleware(adminAPIKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != adminAPIKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			if allowAll {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, Authorization")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
