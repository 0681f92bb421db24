package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/PurushorthamanMR/ArulTex-BA/api/routes"
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
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/metrics"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/migrate"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	categoryRepo := catalog.NewCategoryRepository(conn)
	supplierRepo := catalog.NewSupplierRepository(conn)
	customerRepo := catalog.NewCustomerRepository(conn)
	paymentMethodRepo := catalog.NewPaymentMethodRepository(conn)
	productRepo := products.NewRepository(conn)
	inventoryRepo := inventory.NewRepository(conn)
	registerRepo := register.NewRepository(conn)
	salesRepo := sales.NewRepository(conn)
	purchaseRepo := purchases.NewRepository(conn)
	reportsRepo := reports.NewRepository(conn)

	authService, err := auth.NewService(userRepo, cfg.JWT, logg)
	exitOnError(logg, "auth service", err)

	userService, err := users.NewService(userRepo, cfg.Password)
	exitOnError(logg, "user service", err)

	inventoryService, err := inventory.NewService(inventoryRepo, dbClient, logg)
	exitOnError(logg, "inventory service", err)

	productService, err := products.NewService(productRepo, categoryRepo, supplierRepo, dbClient, logg)
	exitOnError(logg, "product service", err)

	registerService, err := register.NewService(registerRepo, inventoryService, productRepo, customerRepo, paymentMethodRepo, userRepo, dbClient, logg)
	exitOnError(logg, "register service", err)

	salesService, err := sales.NewService(salesRepo, inventoryService, userRepo, dbClient, logg)
	exitOnError(logg, "sales service", err)

	purchaseService, err := purchases.NewService(purchaseRepo, inventoryService, supplierRepo, userRepo, dbClient, logg)
	exitOnError(logg, "purchases service", err)

	reportsService, err := reports.NewService(reportsRepo, userRepo, dbClient, logg)
	exitOnError(logg, "reports service", err)

	promReg := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(promReg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			HTTPMetrics:      httpMetrics,
			PromReg:          promReg,
			AuthService:      authService,
			UserService:      userService,
			ProductService:   productService,
			InventoryService: inventoryService,
			RegisterService:  registerService,
			SalesService:     salesService,
			PurchaseService:  purchaseService,
			ReportsService:   reportsService,
			Categories:       categoryRepo,
			Suppliers:        supplierRepo,
			Customers:        customerRepo,
			PaymentMethods:   paymentMethodRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOnError(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+resource, err)
	os.Exit(1)
}
