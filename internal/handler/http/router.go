package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bizcenter/marketplace/internal/auth"
	"github.com/bizcenter/marketplace/internal/service"
	"github.com/bizcenter/marketplace/pkg/health"
	"github.com/bizcenter/marketplace/pkg/middleware"
)

// RouterConfig holds the cross-cutting configuration for the router.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	RateLimitRPS   int
	RateLimitBurst int
	TracingEnabled bool
	PprofCIDRs     []string
}

// NewRouter creates a chi router with all marketplace routes registered.
// Reads are public; shop and product mutations require a business_owner
// token, reviews any authenticated user.
func NewRouter(
	shopService *service.ShopService,
	productService *service.ProductService,
	reviewService *service.ReviewService,
	healthHandler *health.Handler,
	validate middleware.TokenValidator,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("marketplace"))
	if cfg.TracingEnabled {
		r.Use(middleware.Tracing("marketplace"))
	}
	r.Use(middleware.RequestLogger(logger))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	}

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	shopHandler := NewShopHandler(shopService, productService, logger)
	reviewHandler := NewReviewHandler(reviewService, logger)
	productHandler := NewProductHandler(productService, logger)

	requireAuth := middleware.Auth(validate)
	requireOwnerRole := middleware.RequireRole(auth.RoleBusinessOwner)

	r.Route("/api/v1/shops", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", shopHandler.ListShops)
		r.Get("/{id}", shopHandler.GetShop)
		r.Get("/{id}/products", shopHandler.GetShopProducts)
		r.Get("/{id}/reviews", reviewHandler.ListReviews)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/{id}/reviews", reviewHandler.AddReview)

			r.Group(func(r chi.Router) {
				r.Use(requireOwnerRole)
				r.Post("/", shopHandler.CreateShop)
				r.Put("/{id}", shopHandler.UpdateShop)
				r.Delete("/{id}", shopHandler.DeleteShop)
			})
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", productHandler.ListProducts)
		r.Get("/{id}", productHandler.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireOwnerRole)
			r.Post("/", productHandler.CreateProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})
	})

	return r
}
