package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/domain"
	"github.com/delivery-pricing-service/internal/domain/repository"
	"github.com/delivery-pricing-service/internal/pkg/utils"
)

// routeKeyVersion - версия схемы ключа кеша маршрутов
const routeKeyVersion = "v1"

// RouteUseCase разрешает дистанцию и длительность маршрута через кеш
// и провайдера. Сбои основного провайдера никогда не доходят до
// вызывающего: любой сбой деградирует на геометрический fallback.
type RouteUseCase struct {
	cacheRepo repository.CacheRepository
	primary   repository.RouteProvider
	fallback  repository.RouteProvider
	logger    *zap.Logger

	cacheTTL   time.Duration
	timeBucket time.Duration
}

// NewRouteUseCase - создание нового RouteUseCase.
// primary может быть nil (режим fallback-only для детерминированных
// тестов и окружений без ключа провайдера).
func NewRouteUseCase(
	cacheRepo repository.CacheRepository,
	primary repository.RouteProvider,
	fallback repository.RouteProvider,
	logger *zap.Logger,
	cacheTTL time.Duration,
	timeBucket time.Duration,
) *RouteUseCase {
	return &RouteUseCase{
		cacheRepo:  cacheRepo,
		primary:    primary,
		fallback:   fallback,
		logger:     logger,
		cacheTTL:   cacheTTL,
		timeBucket: timeBucket,
	}
}

// Resolve нормализует координаты и возвращает результат маршрута
// из кеша либо от провайдера. Вместе с маршрутом возвращаются
// нормализованные точки - они попадают в котировку и в ключ кеша.
func (uc *RouteUseCase) Resolve(
	ctx context.Context,
	pickupLat, pickupLng, dropLat, dropLng float64,
	city, vehicleType string,
	at time.Time,
) (*domain.RouteResult, domain.Coordinate, domain.Coordinate, error) {
	var pickup, drop domain.Coordinate

	plat, plng, err := utils.NormalizeCoordinate(pickupLat, pickupLng)
	if err != nil {
		return nil, pickup, drop, err
	}
	dlat, dlng, err := utils.NormalizeCoordinate(dropLat, dropLng)
	if err != nil {
		return nil, pickup, drop, err
	}
	pickup = domain.Coordinate{Lat: plat, Lng: plng}
	drop = domain.Coordinate{Lat: dlat, Lng: dlng}

	key := uc.cacheKey(city, vehicleType, pickup, drop, at)

	// Ошибки кеша не фатальны: идём к провайдеру
	if cached, err := uc.cacheRepo.GetRoute(ctx, key); err == nil && cached != nil {
		uc.logger.Debug("Route cache hit", zap.String("key", key))
		cached.CacheKey = key
		return cached, pickup, drop, nil
	}

	route := uc.fetchRoute(ctx, pickup, drop)
	route.CacheKey = key

	if err := uc.cacheRepo.SetRoute(ctx, key, route, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache route", zap.String("key", key), zap.Error(err))
	}

	return route, pickup, drop, nil
}

// fetchRoute опрашивает основного провайдера и деградирует на fallback
// при любом сбое (сеть, статус, парсинг). Повторов нет: fallback и есть
// стратегия избегания ретраев.
func (uc *RouteUseCase) fetchRoute(ctx context.Context, pickup, drop domain.Coordinate) *domain.RouteResult {
	if uc.primary != nil {
		route, err := uc.primary.GetRoute(ctx, pickup, drop)
		if err == nil {
			return route
		}
		uc.logger.Warn("Primary route provider failed, falling back",
			zap.String("provider", uc.primary.Name()),
			zap.Error(err))
	}

	// Геометрическая оценка не возвращает ошибок
	route, _ := uc.fallback.GetRoute(ctx, pickup, drop)
	return route
}

// cacheKey кодирует версию, город, машину, обе нормализованные точки
// и грубый временной бакет: трафик не протухает, но остаётся кешируемым
func (uc *RouteUseCase) cacheKey(city, vehicleType string, pickup, drop domain.Coordinate, at time.Time) string {
	bucket := at.Unix() / int64(uc.timeBucket.Seconds())
	return fmt.Sprintf("route:%s:%s:%s:%.4f,%.4f:%.4f,%.4f:%d",
		routeKeyVersion, city, vehicleType,
		pickup.Lat, pickup.Lng, drop.Lat, drop.Lng,
		bucket)
}
