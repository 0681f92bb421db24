package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PurushorthamanMR/ArulTex-BA/api/controllers"
	"github.com/PurushorthamanMR/ArulTex-BA/api/middleware"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/auth"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/catalog"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/inventory"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/products"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/purchases"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/register"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/reports"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/sales"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/users"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/config"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/metrics"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/redis"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	HTTPMetrics *metrics.HTTPMetrics
	PromReg     *prometheus.Registry

	AuthService      auth.Service
	UserService      users.Service
	ProductService   products.Service
	InventoryService inventory.Service
	RegisterService  register.Service
	SalesService     sales.Service
	PurchaseService  purchases.Service
	ReportsService   reports.Service

	Categories     *catalog.CategoryRepository
	Suppliers      *catalog.SupplierRepository
	Customers      *catalog.CustomerRepository
	PaymentMethods *catalog.PaymentMethodRepository
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(d.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, d.Redis, logg))
	})

	if d.PromReg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.PromReg, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.UserList(d.UserService, logg))
			r.Get("/{userId}", controllers.UserGet(d.UserService, logg))
			r.With(middleware.RequireRole(enums.UserRoleAdmin, logg)).Post("/", controllers.UserCreate(d.UserService, logg))
			r.With(middleware.RequireRole(enums.UserRoleAdmin, logg)).Put("/{userId}/active", controllers.UserSetActive(d.UserService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductSearch(d.ProductService, logg))
			r.Get("/low-stock", controllers.ProductLowStock(d.ProductService, logg))
			r.Get("/barcode/{barcode}", controllers.ProductGetByBarcode(d.ProductService, logg))
			r.Get("/{productId}", controllers.ProductGet(d.ProductService, logg))
			r.Get("/{productId}/purchase-items", controllers.PurchaseItemsByProduct(d.PurchaseService, logg))
			r.Post("/", controllers.ProductCreate(d.ProductService, logg))
			r.Put("/{productId}", controllers.ProductUpdate(d.ProductService, logg))
			r.Delete("/{productId}", controllers.ProductDeactivate(d.ProductService, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.With(middleware.RequireRole(enums.UserRoleManager, logg)).Post("/adjustments", controllers.InventoryAdjust(d.InventoryService, logg))
			r.Get("/movements", controllers.MovementSearch(d.InventoryService, logg))
			r.Get("/movements/{movementId}", controllers.MovementGet(d.InventoryService, logg))
			r.Put("/movements/{movementId}/note", controllers.MovementUpdateNote(d.InventoryService, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.TransactionSearch(d.RegisterService, logg))
			r.Get("/{transactionId}", controllers.TransactionGet(d.RegisterService, logg))
			r.Post("/", controllers.TransactionCreate(d.RegisterService, logg))
			r.Put("/{transactionId}/totals", controllers.TransactionUpdateTotals(d.RegisterService, logg))
			r.With(middleware.RequireRole(enums.UserRoleManager, logg)).Post("/{transactionId}/void", controllers.TransactionVoid(d.RegisterService, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.SaleSearch(d.SalesService, logg))
			r.Get("/reports/daily", controllers.SaleReportDaily(d.SalesService, logg))
			r.Get("/reports/monthly", controllers.SaleReportMonthly(d.SalesService, logg))
			r.Get("/reports/by-category", controllers.SaleReportByCategory(d.SalesService, logg))
			r.Get("/reports/by-supplier", controllers.SaleReportBySupplier(d.SalesService, logg))
			r.Get("/{saleId}", controllers.SaleGet(d.SalesService, logg))
			r.Post("/", controllers.SaleCreate(d.SalesService, logg))
			r.Post("/{saleId}/returns", controllers.SaleReturn(d.SalesService, logg))
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", controllers.PurchaseSearch(d.PurchaseService, logg))
			r.Get("/{purchaseId}", controllers.PurchaseGet(d.PurchaseService, logg))
			r.Post("/", controllers.PurchaseCreate(d.PurchaseService, logg))
			r.Put("/{purchaseId}", controllers.PurchaseUpdate(d.PurchaseService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/x", controllers.ReportX(d.ReportsService, logg))
			r.With(middleware.RequireRole(enums.UserRoleManager, logg)).Post("/z", controllers.ReportZ(d.ReportsService, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(d.Categories, logg))
			r.Post("/", controllers.CategoryCreate(d.Categories, logg))
			r.Put("/{categoryId}", controllers.CategoryUpdate(d.Categories, logg))
			r.Delete("/{categoryId}", controllers.CategoryDeactivate(d.Categories, logg))
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", controllers.SupplierList(d.Suppliers, logg))
			r.Post("/", controllers.SupplierCreate(d.Suppliers, logg))
			r.Put("/{supplierId}", controllers.SupplierUpdate(d.Suppliers, logg))
			r.Delete("/{supplierId}", controllers.SupplierDeactivate(d.Suppliers, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomerList(d.Customers, logg))
			r.Post("/", controllers.CustomerCreate(d.Customers, logg))
			r.Put("/{customerId}", controllers.CustomerUpdate(d.Customers, logg))
			r.Delete("/{customerId}", controllers.CustomerDeactivate(d.Customers, logg))
		})

		r.Route("/payment-methods", func(r chi.Router) {
			r.Get("/", controllers.PaymentMethodList(d.PaymentMethods, logg))
			r.Post("/", controllers.PaymentMethodCreate(d.PaymentMethods, logg))
			r.Put("/{paymentMethodId}", controllers.PaymentMethodUpdate(d.PaymentMethods, logg))
			r.Delete("/{paymentMethodId}", controllers.PaymentMethodDeactivate(d.PaymentMethods, logg))
		})
	})

	return r
}
