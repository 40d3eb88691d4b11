package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/api"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/router"
	"github.com/pageza/recipe-catalog/backend/internal/service"
)

// Services are the application services exposed over HTTP.
type Services struct {
	Auth     *service.AuthService
	Recipes  *service.RecipeService
	Cuisines *service.CuisineService
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New builds the HTTP server. limiter may be nil.
func New(cfg *config.Config, db *gorm.DB, svcs Services, limiter *middleware.RateLimiter) *Server {
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.SetupRouter(router.Handlers{
		Auth:     api.NewAuthHandler(svcs.Auth),
		Recipes:  api.NewRecipeHandler(svcs.Recipes),
		Cuisines: api.NewCuisineHandler(svcs.Cuisines),
	}, router.Options{
		DB:          db,
		Tokens:      svcs.Auth,
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter,
	})

	return &Server{
		router: engine,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router returns the HTTP handler, for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("component", "server").Str("addr", s.http.Addr).Msg("starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
