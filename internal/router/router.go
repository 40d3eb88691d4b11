package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/api"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
)

// Handlers groups the API handlers mounted under /api/v1.
type Handlers struct {
	Auth     *api.AuthHandler
	Recipes  *api.RecipeHandler
	Cuisines *api.CuisineHandler
}

// Options carries the cross-cutting pieces of the router.
type Options struct {
	DB          *gorm.DB
	Tokens      middleware.TokenValidator
	CORSOrigins []string
	// Limiter throttles writes; nil disables rate limiting.
	Limiter *middleware.RateLimiter
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(opts.CORSOrigins),
	)

	// System endpoints
	router.GET("/health", api.HealthCheck(opts.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes. Tokens are optional; services decide what anonymous
	// callers may do.
	v1 := router.Group("/api/v1")
	v1.Use(middleware.OptionalAuth(opts.Tokens))

	h.Auth.RegisterRoutes(v1)

	limit := opts.Limiter.Middleware()
	h.Recipes.RegisterRoutes(v1, limit)
	h.Cuisines.RegisterRoutes(v1, limit)

	return router
}
