package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/civic-lens/civic-backend/pkg/apihelpers"
	"github.com/civic-lens/civic-backend/pkg/apihelpers/middlewares"
	"github.com/civic-lens/civic-backend/pkg/metrics"
	"github.com/civic-lens/civic-backend/services/civic-api/apihandlers"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	defer closeConnections()

	// Start webserver
	router := gin.Default()
	router.Use(metrics.GinMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length"},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", apihandlers.HealthCheckHandle)
	router.GET("/metrics", middlewares.HasValidAPIKey(conf.GinConfig.MetricsAPIKeys), gin.WrapH(metrics.Handler()))

	apiHandlers := apihandlers.NewHTTPHandler(
		civicService,
		conf.IdentityJWTConfig.SignKey,
		conf.Upload.SizeLimit,
		conf.Upload.TempDir,
		version,
	)
	apiHandlers.AddRoutes(router.Group(""))

	if conf.GinConfig.DebugMode {
		apihelpers.WriteRoutesToFile(router, "civic-api-routes.txt")
	}

	// Start the server
	slog.Info("Starting Civic API on port "+conf.GinConfig.Port, slog.String("version", version))
	if !conf.GinConfig.MTLS.Use {
		err := router.Run(":" + conf.GinConfig.Port)
		if err != nil {
			slog.Error("Exited Civic API", slog.String("error", err.Error()))
			return
		}
	} else {
		// Create tls config for mutual TLS
		tlsConfig, err := apihelpers.LoadTLSConfig(conf.GinConfig.MTLS.CertificatePaths)
		if err != nil {
			slog.Error("Error loading TLS config.", slog.String("error", err.Error()))
			return
		}

		server := &http.Server{
			Addr:      ":" + conf.GinConfig.Port,
			Handler:   router,
			TLSConfig: tlsConfig,
		}

		err = server.ListenAndServeTLS(conf.GinConfig.MTLS.CertificatePaths.ServerCertPath, conf.GinConfig.MTLS.CertificatePaths.ServerKeyPath)
		if err != nil {
			slog.Error("Exited Civic API", slog.String("error", err.Error()))
			return
		}
	}
}

func closeConnections() {
	if verdictCache != nil {
		if err := verdictCache.Close(); err != nil {
			slog.Error("Error closing redis connection", slog.String("error", err.Error()))
		}
	}
	if civicDBService != nil {
		if err := civicDBService.Close(); err != nil {
			slog.Error("Error closing DB connection", slog.String("error", err.Error()))
		}
	}
}
