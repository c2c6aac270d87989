package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elevatecapital/fundtracker/internal/api/handlers"
	"github.com/elevatecapital/fundtracker/internal/config"
	"github.com/elevatecapital/fundtracker/internal/services"
)

// SetupRouter builds the HTTP router. proofsDir may be empty, in which
// case uploaded proofs are not served.
func SetupRouter(cfg *config.Config, svc handlers.Services, proofsDir string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), requestMetrics())

	frontendPath := cfg.Server.FrontendPath
	serveFrontend := frontendPath != "" && dirExists(frontendPath)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))

	fundHandler := handlers.NewFundHandler(svc)
	limiter := newActionLimiter(cfg.Server.ActionRPS, cfg.Server.ActionBurst)

	// Serve uploaded contribution proofs
	if proofsDir != "" {
		router.Static(services.ProofURLPrefix, proofsDir)
	}

	api := router.Group("/api")
	{
		api.GET("", fundHandler.GetPage)
		api.POST("", limiter.middleware(), fundHandler.PostAction)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if serveFrontend {
		indexPath := filepath.Join(frontendPath, "index.html")

		router.Static("/assets", filepath.Join(frontendPath, "assets"))
		router.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})

		// SPA fallback - serve index.html for all non-API routes
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				handlers.NotFound(c)
				return
			}
			c.File(indexPath)
		})
	} else {
		router.NoRoute(handlers.NotFound)
	}

	return router
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
