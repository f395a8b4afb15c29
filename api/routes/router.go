package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/supplysync/supplysync-backend/api/controllers"
	"github.com/supplysync/supplysync-backend/api/middleware"
	authsvc "github.com/supplysync/supplysync-backend/internal/auth"
	"github.com/supplysync/supplysync-backend/internal/catalog"
	"github.com/supplysync/supplysync-backend/internal/inventorylog"
	"github.com/supplysync/supplysync-backend/internal/llmquery"
	"github.com/supplysync/supplysync-backend/internal/orders"
	"github.com/supplysync/supplysync-backend/pkg/auth/session"
	"github.com/supplysync/supplysync-backend/pkg/config"
	"github.com/supplysync/supplysync-backend/pkg/enums"
	"github.com/supplysync/supplysync-backend/pkg/logger"
	"github.com/supplysync/supplysync-backend/pkg/metrics"
	redisclient "github.com/supplysync/supplysync-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. The router stays a pure
// wiring layer; construction failures happen earlier, in cmd/api.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	Redis          *redisclient.Client
	SessionManager session.AccessSessionChecker
	Gatherer       prometheus.Gatherer

	HealthStores map[string]controllers.Pinger

	HTTPMetrics *metrics.HTTPMetrics

	AuthService      authsvc.Service
	ProductService   catalog.ProductService
	SupplierService  catalog.SupplierService
	WarehouseService catalog.WarehouseService
	OrderService     orders.Service
	InventoryLogs    inventorylog.Service
	LLMService       llmquery.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.HealthStores))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
			r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
			r.Get("/role", controllers.AuthRole(deps.AuthService, logg))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

		adminOnly := middleware.RequireRole(logg, enums.UserRoleAdmin.String())

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.ProductService, logg))
			r.Get("/low-stock", controllers.ListLowStockProducts(deps.ProductService, logg))
			r.Get("/{id}", controllers.GetProduct(deps.ProductService, logg))
			r.With(adminOnly).Post("/", controllers.CreateProduct(deps.ProductService, deps.InventoryLogs, logg))
			r.With(adminOnly).Put("/{id}", controllers.UpdateProduct(deps.ProductService, deps.InventoryLogs, logg))
			r.With(adminOnly).Delete("/{id}", controllers.DeleteProduct(deps.ProductService, logg))
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", controllers.ListSuppliers(deps.SupplierService, logg))
			r.Get("/{id}", controllers.GetSupplier(deps.SupplierService, logg))
			r.Get("/{id}/products", controllers.ListSupplierProducts(deps.SupplierService, logg))
			r.With(adminOnly).Post("/", controllers.CreateSupplier(deps.SupplierService, logg))
			r.With(adminOnly).Put("/{id}", controllers.UpdateSupplier(deps.SupplierService, logg))
			r.With(adminOnly).Delete("/{id}", controllers.DeleteSupplier(deps.SupplierService, logg))
		})

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/", controllers.ListWarehouses(deps.WarehouseService, logg))
			r.Get("/{id}", controllers.GetWarehouse(deps.WarehouseService, logg))
			r.Get("/{id}/products", controllers.ListWarehouseProducts(deps.WarehouseService, logg))
			r.With(adminOnly).Post("/", controllers.CreateWarehouse(deps.WarehouseService, logg))
			r.With(adminOnly).Put("/{id}", controllers.UpdateWarehouse(deps.WarehouseService, logg))
			r.With(adminOnly).Delete("/{id}", controllers.DeleteWarehouse(deps.WarehouseService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.OrderService, logg))
			r.Get("/{id}", controllers.GetOrder(deps.OrderService, logg))
			r.Post("/", controllers.CreateOrder(deps.OrderService, logg))
			r.Put("/{id}", controllers.UpdateOrder(deps.OrderService, logg))
			r.Post("/{id}/status", controllers.UpdateOrderStatus(deps.OrderService, logg))
			r.With(adminOnly).Delete("/{id}", controllers.DeleteOrder(deps.OrderService, logg))
		})

		r.With(adminOnly).Get("/inventory-logs", controllers.ListInventoryLogs(deps.InventoryLogs, logg))

		r.Post("/llm/query", controllers.LLMQuery(deps.LLMService, logg))
	})

	return r
}
