package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/folio/app/cfg"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
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

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, HX-Request, HX-Target")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/panels/:name", handler.GetPanel)
	r.POST("/panels/:name/retry", handler.RetryPanel)

	r.GET("/blog/rss.xml", handler.GetBlogFeed)

	r.GET("/health", handler.GetHealth)

	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.GET("/panels", handler.APIListPanels)
			api.GET("/panels/:name", handler.APIGetPanel)
			api.POST("/panels/:name/refresh", handler.APIRefreshPanel)
			api.POST("/panels/:name/reload", handler.APIReloadPanel)
			api.GET("/blog", handler.APIListPosts)
			api.GET("/projects", handler.APIListProjects)
		}
		slog.Info("API endpoints enabled with authentication")
	} else {
		slog.Info("API endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"panel":  "/panels/<name>",
			"retry":  "/panels/<name>/retry (POST)",
			"blog":   "/blog/rss.xml",
			"health": "/health",
		}

		if apiAccessKey != "" {
			endpoints["panels"] = "/api/panels (requires X-API-Key header)"
			endpoints["details"] = "/api/panels/<name> (requires X-API-Key header)"
			endpoints["refresh"] = "/api/panels/<name>/refresh (POST, requires X-API-Key header)"
			endpoints["reload"] = "/api/panels/<name>/reload (POST, requires X-API-Key header)"
			endpoints["posts"] = "/api/blog?q=&tag= (requires X-API-Key header)"
			endpoints["projects"] = "/api/projects?category=&status=&featured= (requires X-API-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "Folio",
			"version":     cfg.Get().Version,
			"description": "Portfolio backend serving GitHub panels and the blog feed",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

func authMiddleware(apiAccessKey string) gin.HandlerFunc {
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

		if providedKey != apiAccessKey {
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
