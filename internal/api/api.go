// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/storeops/reporting-backend/internal/api/handlers"
	"github.com/storeops/reporting-backend/internal/api/middleware"
	"github.com/storeops/reporting-backend/internal/config"
	"github.com/storeops/reporting-backend/internal/service"
)

type Services struct {
	ParService  *service.ParService
	ParDefaults config.ParConfig
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.ParService != nil {
		parHandler := handlers.NewParHandler(services.ParService, services.ParDefaults)
		parGroup := apiGroup.Group("/par")
		{
			parGroup.GET("/context", parHandler.GetOrderContext)
			parGroup.GET("/methods", parHandler.GetMethods)
			parGroup.GET("/metrics", parHandler.GetMetrics)
			parGroup.GET("/next_order", parHandler.GetParForNextOrder)
			parGroup.GET("/next_order/export", parHandler.ExportParCSV)
			parGroup.POST("/cache/clear", parHandler.ClearCache)
		}
		apiGroup.GET("/stores", parHandler.GetStores)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
