package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/supplysync/supplysync-backend/api/controllers"
	"github.com/supplysync/supplysync-backend/api/routes"
	"github.com/supplysync/supplysync-backend/internal/auth"
	"github.com/supplysync/supplysync-backend/internal/catalog"
	"github.com/supplysync/supplysync-backend/internal/inventorylog"
	"github.com/supplysync/supplysync-backend/internal/llmquery"
	"github.com/supplysync/supplysync-backend/internal/orders"
	"github.com/supplysync/supplysync-backend/internal/users"
	"github.com/supplysync/supplysync-backend/pkg/auth/session"
	"github.com/supplysync/supplysync-backend/pkg/config"
	"github.com/supplysync/supplysync-backend/pkg/db"
	"github.com/supplysync/supplysync-backend/pkg/logger"
	"github.com/supplysync/supplysync-backend/pkg/metrics"
	"github.com/supplysync/supplysync-backend/pkg/migrate"
	"github.com/supplysync/supplysync-backend/pkg/mongo"
	"github.com/supplysync/supplysync-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	mongoClient, err := mongo.New(context.Background(), cfg.Mongo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap mongo", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Close(context.Background()); err != nil {
			logg.Error(context.Background(), "error closing mongo", err)
		}
	}()

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productRepo := catalog.NewProductRepository(mongoClient.Products())
	supplierRepo := catalog.NewSupplierRepository(mongoClient.Suppliers())
	warehouseRepo := catalog.NewWarehouseRepository(mongoClient.Warehouses())

	productService, err := catalog.NewProductService(productRepo, supplierRepo, warehouseRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}
	supplierService, err := catalog.NewSupplierService(supplierRepo, productRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier service", err)
		os.Exit(1)
	}
	warehouseService, err := catalog.NewWarehouseService(warehouseRepo, productRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create warehouse service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	bridgeMetrics := metrics.NewBridgeMetrics(registry)

	ollamaClient, err := llmquery.NewOllamaClient(cfg.LLM)
	if err != nil {
		logg.Error(context.Background(), "failed to create ollama client", err)
		os.Exit(1)
	}
	llmService, err := llmquery.NewService(
		ollamaClient,
		llmquery.NewStoreExecutor(mongoClient.Database()),
		bridgeMetrics,
		logg,
		cfg.LLM.Timeout,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create llm query service", err)
		os.Exit(1)
	}

	logService, err := inventorylog.NewService(inventorylog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory log service", err)
		os.Exit(1)
	}

	numberer, err := orders.NewRedisNumberer(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create order numberer", err)
		os.Exit(1)
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		DB:             dbClient,
		OrderRepo:      orders.NewRepository(dbClient.DB()),
		LogRepo:        inventorylog.NewRepository(dbClient.DB()),
		ProductCatalog: productService,
		Numberer:       numberer,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		Redis:          redisClient,
		SessionManager: sessionManager,
		Gatherer:       registry,
		HealthStores: map[string]controllers.Pinger{
			"db":    dbClient,
			"mongo": mongoClient,
			"redis": redisClient,
		},
		HTTPMetrics:      httpMetrics,
		AuthService:      authService,
		ProductService:   productService,
		SupplierService:  supplierService,
		WarehouseService: warehouseService,
		OrderService:     orderService,
		InventoryLogs:    logService,
		LLMService:       llmService,
	})

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
		Addr:    addr,
		Handler: router,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
