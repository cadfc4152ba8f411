package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/wasteless-api/internal/auth"
	"github.com/redmonkez12/wasteless-api/internal/config"
	"github.com/redmonkez12/wasteless-api/internal/food"
	"github.com/redmonkez12/wasteless-api/internal/history"
	"github.com/redmonkez12/wasteless-api/internal/httputil"
	"github.com/redmonkez12/wasteless-api/internal/logging"
	"github.com/redmonkez12/wasteless-api/internal/metrics"
	"github.com/redmonkez12/wasteless-api/internal/user"
)

// Pinger is a dependency the health check pings
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Dependencies holds everything the router mounts
type Dependencies struct {
	Auth           *auth.Handler
	Food           *food.Handler
	User           *user.Handler
	History        *history.Handler
	AuthMiddleware *auth.Middleware
	UploadLimiter  func(http.Handler) http.Handler
	Checks         map[string]Pinger
}

// NewRouter creates and configures the HTTP router. Every route is
// registered exactly once.
func NewRouter(cfg *config.Config, deps Dependencies, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(Recoverer)
	r.Use(metrics.InstrumentHTTP)
	r.Use(middleware.Compress(5))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondErrorWithCode(w, "route not found", httputil.CodeNotFound, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondErrorWithCode(w, "method not allowed", httputil.CodeMethodNotAllowed, http.StatusMethodNotAllowed)
	})

	r.Get("/health", healthHandler(deps.Checks))
	r.Handle("/metrics", metrics.Handler())

	// Swagger UI only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled", "path", "/swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	uploadLimiter := deps.UploadLimiter
	if uploadLimiter == nil {
		uploadLimiter = func(next http.Handler) http.Handler { return next }
	}

	// Public routes
	r.Post("/register", deps.Auth.Register)
	r.Post("/login", deps.Auth.Login)
	r.Post("/logout", deps.Auth.Logout)
	r.Get("/food/search", deps.Food.Search)

	// Anonymous callers get every listing, authenticated ones a recommendation
	r.With(deps.AuthMiddleware.OptionalAuth).Get("/foodList", deps.Food.FoodList)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)

		r.Get("/homepage", deps.Auth.Homepage)

		r.With(uploadLimiter).Post("/postFood", deps.Food.PostFood)
		r.Get("/foodList/{userId}", deps.Food.FoodListByUser)
		r.Get("/foodDetail/{id}", deps.Food.FoodDetail)

		r.Get("/userProfile", deps.User.GetProfile)
		r.With(uploadLimiter).Put("/userProfile", deps.User.UpdateProfile)

		r.Get("/history", deps.History.List)
		r.Post("/history", deps.History.Create)
		r.Put("/history", deps.History.Update)
	})

	return r
}

// HealthResponse reports the API and dependency status
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler pings every dependency
// @Summary      Health check
// @Description  Check if the API and its dependencies are reachable
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func healthHandler(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := HealthResponse{Status: "api is running"}
		status := http.StatusOK

		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check.PingContext(ctx); err != nil {
				logging.GetLoggerFromContext(r.Context()).Warn("health check failed", "dependency", name, "error", err.Error())
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		httputil.RespondJSON(w, resp, status)
	}
}
