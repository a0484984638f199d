package repository

import (
	"context"

	"github.com/delivery-pricing-service/internal/domain"
)

// PricingRepository определяет доступ к тарифным конфигурациям.
// Все чтения - срезы "на текущий момент": активная версия с открытым
// effective-окном.
type PricingRepository interface {
	// GetActiveConfig возвращает действующий конфиг для (city, vehicle)
	// или nil при отсутствии
	GetActiveConfig(ctx context.Context, city, vehicleType string) (*domain.PricingConfig, error)

	// CreateConfigVersion атомарно закрывает текущую версию и открывает
	// новую (version+1) в одной транзакции
	CreateConfigVersion(ctx context.Context, cfg *domain.PricingConfig) (*domain.PricingConfig, error)

	// ListSurgeRules возвращает активные surge-правила конфига
	ListSurgeRules(ctx context.Context, pricingConfigID int64) ([]domain.SurgeRule, error)

	// ListCitySlabs возвращает городские тарифные полосы,
	// упорядоченные по min_km
	ListCitySlabs(ctx context.Context, city, vehicleType string) ([]domain.DistanceSlab, error)

	// ListZoneSlabs возвращает зонные тарифные полосы,
	// упорядоченные по min_km
	ListZoneSlabs(ctx context.Context, zoneID int64, vehicleType string) ([]domain.DistanceSlab, error)

	// GetZoneVehiclePricing возвращает зонное переопределение вместе
	// с дочерними time-band записями, nil при отсутствии
	GetZoneVehiclePricing(ctx context.Context, zoneID int64, vehicleType string) (*domain.ZoneVehiclePricing, error)

	// ListZonePairPricing возвращает активные коридорные записи для
	// обоих направлений пары зон
	ListZonePairPricing(ctx context.Context, city, fromZoneCode, toZoneCode, vehicleType string) ([]domain.ZonePairVehiclePricing, error)
}
