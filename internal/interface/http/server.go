// Package http exposes the portal workflow over a versioned REST API.
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/collab-hub/collab-portal/config"
	"github.com/collab-hub/collab-portal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// HealthChecker reports readiness of one dependency.
type HealthChecker func(ctx context.Context) error

// Server wraps the gin engine and the underlying http.Server.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	log    *logger.Logger
}

// Deps carries everything the router needs.
type Deps struct {
	Applications *ApplicationHandlers
	Progress     *ProgressHandlers
	Health       map[string]HealthChecker
	Metrics      prometheus.Gatherer
}

// NewServer builds the router and binds all routes.
func NewServer(cfg *config.Config, deps Deps, log *logger.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(log))
	engine.Use(SecurityHeaders())
	if cfg.HTTP.EnableCORS {
		engine.Use(CORS(cfg.HTTP.AllowedOrigins))
	}

	registerSystemRoutes(engine, cfg, deps)
	registerAPIRoutes(engine, cfg, deps)

	return &Server{
		engine: engine,
		srv: &http.Server{
			Addr:         cfg.HTTP.Address(),
			Handler:      engine,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		},
		log: log,
	}
}

func registerSystemRoutes(engine *gin.Engine, cfg *config.Config, deps Deps) {
	engine.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		checks := make(map[string]string, len(deps.Health))

		for name, check := range deps.Health {
			if err := check(c.Request.Context()); err != nil {
				checks[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "up"
		}

		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	})

	if cfg.HTTP.EnableMetrics && deps.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}
}

func registerAPIRoutes(engine *gin.Engine, cfg *config.Config, deps Deps) {
	v1 := engine.Group("/v1")
	v1.Use(Auth(cfg.Auth))

	// Application lifecycle.
	v1.POST("/opportunities/:type/:id/applications", deps.Applications.Submit)
	v1.GET("/opportunities/:type/:id/applications", deps.Applications.ListApplicants)
	v1.GET("/applications/mine", deps.Applications.ListMine)
	v1.PATCH("/applications/:id/status", deps.Applications.SetStatus)
	v1.DELETE("/applications/:id", deps.Applications.Withdraw)

	// Progress ledger.
	v1.GET("/progress/mine", deps.Progress.MyProgress)
	v1.GET("/applications/:id/progress", deps.Progress.PosterView)
	v1.POST("/applications/:id/progress/updates", deps.Progress.AppendUpdate)
	v1.POST("/applications/:id/progress/submission", deps.Progress.UploadSubmission)
	v1.GET("/applications/:id/progress/submission", deps.Progress.DownloadSubmission)
	v1.POST("/applications/:id/progress/remarks", deps.Progress.AddRemark)
	v1.POST("/applications/:id/progress/remarks/:remarkId/replies", deps.Progress.ReplyToRemark)
}

// Start begins serving. Blocks until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.log.Info("http server starting", logger.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
