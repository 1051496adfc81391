package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/bazaar-backend/api/controllers"
	"github.com/angelmondragon/bazaar-backend/api/middleware"
	"github.com/angelmondragon/bazaar-backend/internal/admin"
	"github.com/angelmondragon/bazaar-backend/internal/auth"
	"github.com/angelmondragon/bazaar-backend/internal/banners"
	"github.com/angelmondragon/bazaar-backend/internal/categories"
	"github.com/angelmondragon/bazaar-backend/internal/likes"
	products "github.com/angelmondragon/bazaar-backend/internal/products"
	"github.com/angelmondragon/bazaar-backend/internal/users"
	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/metrics"
	"github.com/angelmondragon/bazaar-backend/pkg/redis"
)

// Dependencies are the services and infrastructure handles the router wires
// into handlers.
type Dependencies struct {
	Sessions    middleware.SessionChecker
	RateLimiter redis.RateLimiter
	Ready       map[string]controllers.Pinger
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Auth       auth.Service
	Users      users.Service
	Products   products.Service
	Likes      likes.Service
	Categories categories.Service
	Banners    banners.Service
	Taxonomy   *admin.TaxonomyService
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
		middleware.Logging(logg, deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg)
	buyerOnly := middleware.RequireRole(enums.UserRoleBuyer, logg)
	sellerOnly := middleware.RequireRole(enums.UserRoleSeller, logg)
	adminOnly := middleware.RequireAdminKey(cfg.Admin.APIKey, logg)
	maxUpload := cfg.Media.MaxUploadBytes()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Ready, logg))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, deps.RateLimiter, logg)).Post("/register", controllers.AuthRegister(deps.Auth, enums.UserRoleBuyer, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, deps.RateLimiter, logg)).Post("/register/seller", controllers.AuthRegister(deps.Auth, enums.UserRoleSeller, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/google", controllers.AuthGoogle(deps.Auth, enums.UserRoleBuyer, logg))
			r.Post("/google/seller", controllers.AuthGoogle(deps.Auth, enums.UserRoleSeller, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.With(requireAuth).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
			r.With(requireAuth).Get("/me", controllers.AuthMe(deps.Users, logg))
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(requireAuth)
			r.With(buyerOnly).Put("/profile", controllers.UpdateBuyerProfile(deps.Users, maxUpload, logg))
			r.Get("/likes", controllers.ListLikedProducts(deps.Likes, logg))
		})

		r.Route("/seller", func(r chi.Router) {
			r.Use(requireAuth, sellerOnly)
			r.Put("/profile", controllers.UpdateSellerProfile(deps.Users, maxUpload, logg))
			r.Get("/products", controllers.ListSellerProducts(deps.Products, logg))
			r.Patch("/products/{productId}/stock", controllers.SetProductStock(deps.Products, logg))
		})

		r.Route("/product", func(r chi.Router) {
			r.Get("/categories", controllers.ListCategories(deps.Categories, logg))
			r.With(adminOnly).Post("/categories", controllers.CreateCategory(deps.Categories, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.With(sellerOnly).Post("/", controllers.CreateProduct(deps.Products, logg))
				r.With(sellerOnly).Put("/{productId}", controllers.UpdateProduct(deps.Products, logg))
				r.With(sellerOnly).Delete("/{productId}", controllers.DeleteProduct(deps.Products, logg))
				r.Post("/{productId}/like", controllers.LikeProduct(deps.Likes, logg))
				r.Delete("/{productId}/like", controllers.UnlikeProduct(deps.Likes, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(deps.Products, logg))
		})

		r.Route("/event/banner", func(r chi.Router) {
			r.Get("/", controllers.ListBanners(deps.Banners, logg))
			r.With(adminOnly).Post("/", controllers.CreateBanner(deps.Banners, logg))
		})

		r.With(adminOnly).Post("/admin/taxonomy/recount", controllers.RecountTaxonomy(deps.Taxonomy, logg))
	})

	return r
}
