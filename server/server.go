package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/pulseroom/meeting-pipeline/config"
	"github.com/pulseroom/meeting-pipeline/metrics"
	"github.com/pulseroom/meeting-pipeline/orchestrator"
	"github.com/pulseroom/meeting-pipeline/store"
)

// Server exposes the pipeline over HTTP: a blocking analyze call, an SSE
// stream of incremental segment events, and stored-analysis retrieval.
type Server struct {
	cfg      config.HTTPConfig
	pipeline *orchestrator.Pipeline
	store    store.Store
	met      *metrics.Metrics
	log      *logrus.Entry
	srv      *http.Server
}

func New(cfg config.HTTPConfig, pipeline *orchestrator.Pipeline, st store.Store, met *metrics.Metrics, log *logrus.Entry) *Server {
	s := &Server{cfg: cfg, pipeline: pipeline, store: st, met: met, log: log}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		v1.POST("/meetings/:id/analyze", s.analyzeMeeting)
		v1.GET("/meetings/:id", s.getMeeting)
		v1.GET("/meetings/:id/stream", s.streamMeeting)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.srv = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler: router,
	}
	return s
}

// Handler returns the underlying HTTP handler, used by tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		s.log.WithField("addr", s.srv.Addr).Info("http server listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("http server stopped")
		}
	}()
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) observe(route string, status int) {
	if s.met != nil {
		s.met.HTTPRequests.WithLabelValues(route, fmt.Sprintf("%d", status)).Inc()
	}
}
