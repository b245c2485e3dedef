package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/auth"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/handlers"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/mailer"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/middleware"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/ratelimit"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/store"
)

// Paths never counted by the api limiter.
var limitExempt = []string{"/swagger", "/favicon", "/healthcheck"}

type Deps struct {
	Store  store.Store
	Hasher *auth.Hasher
	Tokens *auth.TokenIssuer
	Mail   mailer.Sender

	APILimiter    *ratelimit.Limiter
	DeviceLimiter *ratelimit.Limiter

	AllowedOrigins []string
	Log            logr.Logger
}

// New returns an engine with the global middleware and every route installed.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(d.Log),
		middleware.RequestLogger(d.Log),
		cors.New(corsConfig(d.AllowedOrigins)),
	)
	Setup(r, d)
	return r
}

func Setup(r *gin.Engine, d Deps) {
	eh := handlers.NewEmployeeHandler(d.Store, d.Log)
	ah := handlers.NewAdminHandler(store.NewAdminRepository(d.Store, d.Hasher), d.Hasher, d.Tokens, d.Mail, d.Log)
	hh := handlers.NewHealthHandler(d.Store, d.Log)
	requireAuth := middleware.NewAuthMiddleware(d.Tokens, d.Log).Authenticate()

	r.GET("/", handlers.Root)
	r.NoRoute(handlers.NotFound)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(d.APILimiter, d.Log, middleware.RateLimitConfig{SkipPaths: limitExempt}))
	{
		api.GET("/", handlers.Index)
		api.GET("/healthcheck", hh.Check)

		api.POST("/admin/signup", ah.SignUp)
		api.POST("/admin/login", ah.Login)
		api.GET("/admin/profile", requireAuth, ah.Profile)

		api.POST("/employee/add", requireAuth, eh.CreateEmployee)
		api.GET("/employees", eh.ListEmployees)
		api.GET("/employees/:id", eh.GetEmployeeByID)
		api.PUT("/employees/:id", requireAuth, eh.UpdateEmployee)
		api.DELETE("/employees/:id", requireAuth, eh.DeleteEmployee)
	}

	// device clients sign in through their own, separately limited group
	device := r.Group("/api/v1/device/v1")
	device.Use(middleware.RateLimit(d.DeviceLimiter, d.Log, middleware.RateLimitConfig{}))
	{
		device.POST("/admin/signup", ah.SignUp)
		device.POST("/admin/login", ah.Login)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders: []string{"RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
