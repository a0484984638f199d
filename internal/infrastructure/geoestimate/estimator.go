package geoestimate

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/domain"
	"github.com/delivery-pricing-service/internal/domain/repository"
	"github.com/delivery-pricing-service/internal/pkg/utils"
)

const (
	// tortuosityFactor переводит расстояние по прямой в оценку
	// дорожного: городская сеть длиннее геодезической линии
	tortuosityFactor = 1.4

	// averageSpeedKMH - консервативная средняя скорость городской доставки
	averageSpeedKMH = 25.0
)

type estimator struct {
	logger *zap.Logger
}

// NewEstimator создает геометрический оценщик маршрута. Он не ходит
// в сеть и не возвращает ошибок: это последний рубеж route resolver.
func NewEstimator(logger *zap.Logger) repository.RouteProvider {
	return &estimator{logger: logger}
}

func (e *estimator) Name() string {
	return domain.ProviderHaversineFallback
}

// GetRoute оценивает маршрут по haversine-дистанции с поправкой
// на извилистость и средней скорости
func (e *estimator) GetRoute(_ context.Context, pickup, drop domain.Coordinate) (*domain.RouteResult, error) {
	straightM := utils.HaversineDistance(pickup.Lat, pickup.Lng, drop.Lat, drop.Lng)
	roadM := int64(math.Round(straightM * tortuosityFactor))
	durationS := int64(math.Round(float64(roadM) / (averageSpeedKMH * 1000 / 3600)))

	e.logger.Debug("Geometric route estimate",
		zap.Int64("distance_m", roadM),
		zap.Int64("duration_s", durationS))

	return &domain.RouteResult{
		DistanceM: roadM,
		DurationS: durationS,
		Provider:  domain.ProviderHaversineFallback,
	}, nil
}
