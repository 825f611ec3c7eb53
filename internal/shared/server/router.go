package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hse-backend/internal/massimport"
	"hse-backend/internal/ppe"
	"hse-backend/internal/shared/config"
	"hse-backend/internal/shared/metrics"
	"hse-backend/internal/shared/server/middleware"
	"hse-backend/internal/shared/server/respond"
)

// Rate limit groups.
const (
	GroupImport  = "IMPORT"
	GroupPolling = "POLLING"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config        config.Config
	ImportHandler *massimport.Handler
	PPEHandler    *ppe.Handler
	Limiter       *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	secured := api.Group("")
	secured.Use(
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        DefaultRateLimits(),
			DefaultGroup: GroupImport,
			GroupFor:     rateLimitGroup,
			Limiter:      deps.Limiter,
		}),
	)
	registerMeRoutes(secured)
	if deps.ImportHandler != nil {
		deps.ImportHandler.RegisterRoutes(secured)
	}
	if deps.PPEHandler != nil {
		deps.PPEHandler.RegisterRoutes(secured)
	}

	return r
}

// DefaultRateLimits lets pollers refresh every few seconds while keeping
// uploads, which do all their work inline, scarce.
func DefaultRateLimits() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		GroupImport:  {Rate: 0.1, Burst: 5},
		GroupPolling: {Rate: 2, Burst: 20},
	}
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodGet {
		return GroupPolling
	}
	return GroupImport
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
