// Package api exposes the visualization service over HTTP. It only
// orchestrates: every decision is made by the service and its engines.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"vizrec/app"
	"vizrec/internal"
	"vizrec/internal/config"
)

// Server is the HTTP front of the visualization service
type Server struct {
	router  *gin.Engine
	service *app.VisualizationService
	cfg     config.ServerConfig
	uploads *rate.Limiter
}

// NewServer creates a server with every route registered
func NewServer(service *app.VisualizationService, cfg config.ServerConfig) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	s := &Server{
		router:  gin.Default(),
		service: service,
		cfg:     cfg,
	}
	if cfg.UploadsPerSecond > 0 {
		burst := cfg.UploadBurst
		if burst < 1 {
			burst = 1
		}
		s.uploads = rate.NewLimiter(rate.Limit(cfg.UploadsPerSecond), burst)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &datasetHandler{service: s.service}
	api := s.router.Group("/api")
	{
		upload := api.Group("/datasets", rateLimit(s.uploads), limitBody(s.cfg.MaxUploadBytes))
		upload.POST("", h.HandleUpload)
		upload.POST("/stream", h.HandleUploadStream)

		api.GET("/datasets", h.HandleList)
		api.GET("/datasets/:id", h.HandleGet)
		api.DELETE("/datasets/:id", h.HandleDelete)
		api.GET("/datasets/:id/profile", h.HandleProfile)
		api.GET("/datasets/:id/recommendations", h.HandleRecommendations)
		api.POST("/datasets/:id/spec", h.HandleSpec)
		api.GET("/datasets/:id/report", h.HandleReport)
		api.GET("/recommendations", h.HandleRecommendAll)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		internal.DefaultLogger.Info("[Server] Listening on :%s", s.cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		internal.DefaultLogger.Info("[Server] Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
