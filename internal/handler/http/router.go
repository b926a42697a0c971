package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campuscoffee/CampusCoffeeGo/internal/service"
	"github.com/campuscoffee/CampusCoffeeGo/pkg/health"
	"github.com/campuscoffee/CampusCoffeeGo/pkg/middleware"
)

const serviceName = "campuscoffee-api"

// NewRouter creates a chi router with all API routes registered.
func NewRouter(
	reviewService *service.ReviewService,
	posService *service.PosService,
	userService *service.UserService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofAllowedCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware. RequestLogger must come after RequestLogging
	// (correlation_id) and Tracing (span context) to pick up both.
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	// Health and observability endpoints.
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	middleware.RegisterPprof(r, pprofAllowedCIDRs, logger)

	reviewHandler := NewReviewHandler(reviewService, logger)
	posHandler := NewPosHandler(posService, logger)
	userHandler := NewUserHandler(userService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.RegisterUser)
			r.Get("/", userHandler.ListUsers)
			r.Get("/{id}", userHandler.GetUser)
		})

		r.Route("/pos", func(r chi.Router) {
			r.Post("/", posHandler.CreatePos)
			r.With(middleware.CacheControl(60)).Get("/", posHandler.ListPos)
			r.Get("/slug/{slug}", posHandler.GetPosBySlug)
			r.Get("/{id}", posHandler.GetPos)
			r.Put("/{id}", posHandler.UpdatePos)
			r.Get("/{id}/reviews", reviewHandler.ListPosReviews)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/{id}", reviewHandler.GetReview)

			// Mutations require the gateway-provided identity.
			r.Group(func(r chi.Router) {
				r.Use(RequireUser)
				r.Post("/", reviewHandler.CreateReview)
				r.Put("/{id}", reviewHandler.UpdateReview)
				r.Post("/{id}/approve", reviewHandler.ApproveReview)
			})
		})
	})

	return r
}
