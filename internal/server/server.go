package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cryptotrack/internal"
	"cryptotrack/internal/config"
	"cryptotrack/internal/tracker"
)

// Service is the subset of tracker.Tracker the API serves.
type Service interface {
	Coins(ctx context.Context) ([]internal.CoinRef, error)
	Resolve(ctx context.Context, name string) (internal.CoinRef, error)
	DefaultCoin(ctx context.Context) (internal.CoinRef, error)
	Lookup(ctx context.Context, coinID string) (internal.CoinRef, error)
	Snapshot(ctx context.Context, coinID string) (internal.MarketSnapshot, error)
	History(ctx context.Context, coinID string, days int) (internal.PriceHistory, error)
	View(ctx context.Context, coin internal.CoinRef) (tracker.View, error)
	Stats() tracker.Stats
}

type Server struct {
	Cfg        config.ServerConfig
	Svc        Service
	Logger     zerolog.Logger
	Router     *gin.Engine
	httpServer *http.Server
}

func New(cfg config.ServerConfig, svc Service, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		Cfg:    cfg,
		Svc:    svc,
		Logger: logger.With().Str("component", "server").Logger(),
		Router: gin.New(),
	}
	s.SetupRouter()
	return s
}

func (s *Server) SetupRouter() {
	NewMiddleware(s.Logger).SetupMiddleware(s.Router)
	NewHandlers(s.Svc, s.Logger).SetupHandlers(s.Router)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.Cfg.Addr(),
		Handler:      s.Router,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	errCh := make(chan error, 1)
	s.Logger.Info().Msgf("Starting server on %s", s.httpServer.Addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.Logger.Info().Msg("Shutdown signal received, shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	s.Logger.Info().Msg("Server exited gracefully")
	return nil
}
