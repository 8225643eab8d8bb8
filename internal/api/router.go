package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jengzang/routesync/internal/app"
	"github.com/jengzang/routesync/internal/config"
	"github.com/jengzang/routesync/internal/handler"
	"github.com/jengzang/routesync/internal/middleware"
	"github.com/jengzang/routesync/pkg/logger"
)

// SetupRouter wires the HTTP surface onto the running app
func SetupRouter(cfg *config.Config, a *app.App, log logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Route sync API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	listHandler := handler.NewListHandler(a)
	mapHandler := handler.NewMapHandler(a)
	streamHandler := handler.NewStreamHandler(a, log)

	api := r.Group("/api/v1")
	{
		list := api.Group("/list")
		{
			list.GET("", listHandler.GetState)
			list.PUT("/filter", listHandler.SetFilter)
			list.POST("/sync", listHandler.Sync)
			list.POST("/refresh", listHandler.Refresh)
			list.GET("/stats", listHandler.GetStatistics)
			list.POST("/routes/:id/select", listHandler.SelectRoute)
			list.POST("/show-all", listHandler.ShowAll)
			list.PUT("/routes/:id/name",
				middleware.JWTAuth(cfg.JWTSecret),
				middleware.RateLimit(30, time.Minute),
				listHandler.Rename)
		}

		maps := api.Group("/map")
		{
			maps.GET("", mapHandler.GetState)
			maps.GET("/stream", middleware.RateLimit(10, time.Minute), streamHandler.MapStream)
		}
	}

	return r
}
