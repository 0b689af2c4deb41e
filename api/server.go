package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/banachtech/g2calib/config"
	"github.com/banachtech/g2calib/db"
	"github.com/banachtech/g2calib/model"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Server serves HTTP requests for the calibration service.
type Server struct {
	store  db.Store
	config config.Config
	log    zerolog.Logger
	router *gin.Engine
	server *http.Server

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewServer creates a new HTTP server and set up routing.
func NewServer(store db.Store, cfg config.Config, log zerolog.Logger) *Server {
	server := &Server{
		store:    store,
		config:   cfg,
		log:      log.With().Str("component", "api").Logger(),
		limiters: make(map[string]*rate.Limiter),
	}

	server.setupRouter()
	server.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server
}

func (server *Server) setupRouter() {
	router := gin.New()
	router.Use(gin.Recovery(), server.logging)

	authRoutes := router.Group("/v1").Use(server.Authentication)
	authRoutes.POST("/map", server.mapParameters)
	authRoutes.POST("/report", server.report)
	authRoutes.POST("/implied-vol", server.impliedVol)
	authRoutes.POST("/runs", server.createRun)
	authRoutes.GET("/runs", server.listRuns)
	authRoutes.GET("/runs/:id", server.getRun)
	server.router = router
}

// Start runs the HTTP server on the configured address.
func (server *Server) Start() error {
	server.log.Info().Str("addr", server.server.Addr).Msg("starting HTTP server")
	if err := server.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (server *Server) Shutdown(ctx context.Context) error {
	server.log.Info().Msg("shutting down HTTP server")
	return server.server.Shutdown(ctx)
}

func (server *Server) logging(c *gin.Context) {
	start := time.Now()
	c.Next()

	server.log.Info().
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Int("status", c.Writer.Status()).
		Int("bytes", c.Writer.Size()).
		Dur("duration_ms", time.Since(start)).
		Msg("HTTP request")
}

// statusCode maps a failure onto its HTTP status.
func statusCode(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrDomain):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(err error) gin.H {
	resp := gin.H{"error": err.Error()}

	var invalid *model.InvalidInputError
	var domain *model.DomainError
	switch {
	case errors.As(err, &invalid):
		resp["field"] = invalid.Field
		if invalid.Index >= 0 {
			resp["index"] = invalid.Index
		}
	case errors.As(err, &domain):
		resp["field"] = domain.Field
		if domain.Index >= 0 {
			resp["index"] = domain.Index
		}
	}
	return resp
}

func (server *Server) abort(c *gin.Context, err error) {
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		server.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(code, errorResponse(err))
}
