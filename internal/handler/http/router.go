package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/apparelstore/internal/auth"
	"github.com/utafrali/apparelstore/internal/service"
	"github.com/utafrali/apparelstore/pkg/health"
	"github.com/utafrali/apparelstore/pkg/middleware"
)

// Services bundles the application services the router exposes.
type Services struct {
	Catalog  *service.CatalogService
	Cart     *service.CartService
	Wishlist *service.WishlistService
	Checkout *service.CheckoutService
	Products *service.ProductService
	Uploads  *service.UploadService
	Orders   *service.OrderService
	Stats    *service.StatsService
	Auth     *service.AuthService
}

// RouterConfig holds the HTTP-facing settings.
type RouterConfig struct {
	ServiceName    string
	CORS           middleware.CORSConfig
	PprofCIDRs     []string
	RequestTimeout time.Duration
	CatalogMaxAge  int
	MaxUploadBytes int64

	// Media serves uploaded images when storage has no public endpoint of its own.
	Media http.Handler

	// Per-IP limit on checkout, upload and login.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a chi router with every storefront and back-office route registered.
func NewRouter(
	svcs Services,
	validateToken middleware.TokenValidator,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack (applied in order).
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)
	if cfg.Media != nil {
		r.Method(http.MethodGet, "/media/*", cfg.Media)
	}

	catalog := NewCatalogHandler(svcs.Catalog, logger)
	cart := NewCartHandler(svcs.Cart, logger)
	wishlist := NewWishlistHandler(svcs.Wishlist, logger)
	checkout := NewCheckoutHandler(svcs.Checkout, logger)
	products := NewProductHandler(svcs.Products, logger)
	uploads := NewUploadHandler(svcs.Uploads, cfg.MaxUploadBytes, logger)
	admin := NewAdminHandler(svcs.Orders, svcs.Stats, svcs.Auth, logger)

	limited := func() func(http.Handler) http.Handler {
		return middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Storefront catalog
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogMaxAge))
			r.Get("/products", catalog.List)
			r.Get("/products/search", catalog.Search)
			r.Get("/products/{id}", catalog.Get)
		})

		// Shopper session state
		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(middleware.Session())

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cart.Get)
				r.Delete("/", cart.Clear)
				r.Post("/items", cart.AddItem)
				r.Put("/items/{productId}", cart.UpdateQuantity)
				r.Delete("/items/{productId}", cart.RemoveItem)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlist.List)
				r.Delete("/", wishlist.Clear)
				r.Post("/toggle", wishlist.Toggle)
				r.Post("/items", wishlist.Add)
				r.Get("/items/{productId}", wishlist.Contains)
				r.Delete("/items/{productId}", wishlist.Remove)
			})
		})

		// Checkout takes its lines from the body or from the session cart.
		r.With(middleware.NoStore, middleware.OptionalSession(), limited()).Post("/checkout", checkout.Submit)

		// Back office
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.With(limited()).Post("/login", admin.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(validateToken))
				r.Use(middleware.RequireRole(auth.RoleAdmin))

				r.Get("/stats", admin.Stats)

				r.Get("/orders", admin.ListOrders)
				r.Get("/orders/{id}", admin.GetOrder)

				r.Get("/products", products.List)
				r.Post("/products", products.Create)
				r.Get("/products/{id}", products.Get)
				r.Put("/products/{id}", products.Update)
				r.Delete("/products/{id}", products.Delete)

				r.With(limited()).Post("/upload", uploads.Upload)
			})
		})
	})

	return r
}
