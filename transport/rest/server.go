package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/caro-backend/internal/entity"
	"github.com/rocketscienceinc/caro-backend/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type registry interface {
	GetRoom(ctx context.Context, rawCode string) (*entity.Room, error)
	Stats(ctx context.Context) (usecase.Stats, error)
}

type Server struct {
	logger   *slog.Logger
	registry registry
	engine   *gin.Engine
}

func New(logger *slog.Logger, registry registry) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		logger:   logger.With("component", "rest"),
		registry: registry,
		engine:   gin.New(),
	}

	server.engine.Use(gin.Recovery(), server.requestLogger())

	server.engine.GET("/ping", server.ping)
	server.engine.GET("/rooms/:code", server.getRoom)
	server.engine.GET("/stats", server.stats)

	return server
}

func (that *Server) Handler() http.Handler {
	return that.engine
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		that.logger.Debug("request served",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
