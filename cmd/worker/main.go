package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/config"
	"github.com/delivery-pricing-service/internal/infrastructure/geoestimate"
	"github.com/delivery-pricing-service/internal/pkg/logger"
	"github.com/delivery-pricing-service/internal/repository/cache"
	"github.com/delivery-pricing-service/internal/repository/postgres"
	redisRepo "github.com/delivery-pricing-service/internal/repository/redis"
	"github.com/delivery-pricing-service/internal/usecase"
	"github.com/delivery-pricing-service/internal/worker"
	"github.com/delivery-pricing-service/internal/worker/pricing"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Pricing Actuals Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup))

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	zoneRepo := postgres.NewZoneRepository(db)
	pricingRepo := postgres.NewPricingRepository(db)
	quoteRepo := postgres.NewQuoteRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	// 6. Initialize use cases. Воркеру не нужен внешний провайдер
	// маршрутов: RecordActual работает по уже сохраненным котировкам.
	routeUC := usecase.NewRouteUseCase(
		cacheRepo,
		nil,
		geoestimate.NewEstimator(log),
		log,
		cfg.Cache.RouteCacheTTL,
		cfg.Cache.RouteTimeBucket,
	)
	rateResolverUC := usecase.NewRateResolverUseCase(zoneRepo, pricingRepo, log)
	calculatorUC := usecase.NewPriceCalculatorUseCase(log)
	quoteUC := usecase.NewQuoteUseCase(
		routeUC,
		rateResolverUC,
		calculatorUC,
		quoteRepo,
		log,
		cfg.Pricing.ReturnTripDelay,
	)

	// 7. Initialize workers
	actualsWorker := pricing.NewActualsWorker(
		streamRepo,
		quoteUC,
		cfg.Worker.ConsumerGroup,
		log,
	)

	// 8. Create worker manager and register workers
	workerManager := worker.NewManager(log)
	workerManager.Register(actualsWorker)

	// 9. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
