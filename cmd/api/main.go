package main

// @title Delivery Pricing Service API
// @version 1.0.0
// @description Сервис расчета котировок доставки. Резолвит маршрут через Google Maps (с геометрическим fallback), подбирает тариф по зонам и коридорам города и считает итоговую цену с surge-правилами и буферами.
// @description
// @description Основные возможности:
// @description - Расчет котировки для одного типа транспорта
// @description - Мульти-котировка для нескольких типов транспорта по одному маршруту
// @description - Связанные котировки туда-обратно со скидкой
// @description - Фиксация фактических цен вендоров и расчет расхождения

// @contact.name API Support
// @contact.email support@delivery-pricing-service.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/delivery-pricing-service/docs"
	"github.com/delivery-pricing-service/internal/config"
	httpDelivery "github.com/delivery-pricing-service/internal/delivery/http"
	"github.com/delivery-pricing-service/internal/delivery/http/handler"
	"github.com/delivery-pricing-service/internal/domain/repository"
	"github.com/delivery-pricing-service/internal/infrastructure/geoestimate"
	"github.com/delivery-pricing-service/internal/infrastructure/googlemaps"
	"github.com/delivery-pricing-service/internal/pkg/logger"
	"github.com/delivery-pricing-service/internal/repository/cache"
	"github.com/delivery-pricing-service/internal/repository/postgres"
	"github.com/delivery-pricing-service/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Delivery Pricing Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

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
	log.Info("PostgreSQL connected")

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
	log.Info("Redis connected")

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}

	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize Repositories
	zoneRepo := postgres.NewZoneRepository(db)
	pricingRepo := postgres.NewPricingRepository(db)
	quoteRepo := postgres.NewQuoteRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)

	log.Info("Repositories initialized")

	// 7. Route providers: Google Maps как основной, геометрическая оценка
	// как fallback. Без API-ключа работаем только на fallback.
	fallbackProvider := geoestimate.NewEstimator(log)

	var primaryProvider repository.RouteProvider
	if cfg.Maps.Strategy == config.StrategyGoogle && cfg.Maps.APIKey != "" {
		primaryProvider, err = googlemaps.NewGoogleMapsClient(&cfg.Maps, log)
		if err != nil {
			log.Fatal("Failed to initialize Google Maps client", zap.Error(err))
		}
		log.Info("Google Maps route provider initialized")
	} else {
		log.Warn("Google Maps disabled, using geometric estimation only",
			zap.String("strategy", cfg.Maps.Strategy))
	}

	// 8. Initialize Use Cases
	routeUC := usecase.NewRouteUseCase(
		cacheRepo,
		primaryProvider,
		fallbackProvider,
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

	log.Info("Use cases initialized")

	// 9. Initialize HTTP Handlers
	quoteHandler := handler.NewQuoteHandler(quoteUC, log)

	// 10. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, quoteHandler)

	log.Info("HTTP server initialized")

	// 11. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 12. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
