package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/domain"
	"github.com/delivery-pricing-service/internal/domain/repository"
	"github.com/delivery-pricing-service/internal/pkg/errors"
)

// RateResolverUseCase разрешает тарифную карту маршрута через цепочку
// приоритетов: corridor -> zone+time-band -> zone-base -> city-default.
// Первая сработавшая ветка выигрывает; буферы, маржа и окно валидности
// всегда берутся из активного городского конфига.
type RateResolverUseCase struct {
	zoneRepo    repository.ZoneRepository
	pricingRepo repository.PricingRepository
	logger      *zap.Logger
}

// NewRateResolverUseCase - создание нового RateResolverUseCase
func NewRateResolverUseCase(
	zoneRepo repository.ZoneRepository,
	pricingRepo repository.PricingRepository,
	logger *zap.Logger,
) *RateResolverUseCase {
	return &RateResolverUseCase{
		zoneRepo:    zoneRepo,
		pricingRepo: pricingRepo,
		logger:      logger,
	}
}

// Resolve строит нормализованную тарифную карту для маршрута.
// Момент котировки переводится в таймзону конфига; возвращается и
// локальное время - от него зависят band, surge и окно валидности.
func (uc *RateResolverUseCase) Resolve(
	ctx context.Context,
	city, vehicleType string,
	pickup, drop domain.Coordinate,
	quoteTime time.Time,
) (*domain.RateCard, time.Time, error) {
	cfg, err := uc.pricingRepo.GetActiveConfig(ctx, city, vehicleType)
	if err != nil {
		uc.logger.Error("Failed to load pricing config",
			zap.String("city", city),
			zap.String("vehicle_type", vehicleType),
			zap.Error(err))
		return nil, quoteTime, err
	}
	if cfg == nil {
		return nil, quoteTime, errors.ErrConfigNotFound.WithDetails(map[string]interface{}{
			"city":         city,
			"vehicle_type": vehicleType,
		})
	}

	localTime := quoteTime
	if loc, locErr := time.LoadLocation(cfg.Timezone); locErr == nil {
		localTime = quoteTime.In(loc)
	}
	band := domain.TimeBandFor(localTime)

	zones, err := uc.zoneRepo.ListActiveByCity(ctx, city)
	if err != nil {
		uc.logger.Error("Failed to list zones", zap.String("city", city), zap.Error(err))
		return nil, localTime, err
	}

	pickupZone := domain.FindZone(zones, pickup.Lat, pickup.Lng)
	dropZone := domain.FindZone(zones, drop.Lat, drop.Lng)

	card := uc.cardFromConfig(cfg, band)
	uc.applySideChannel(card, pickupZone, dropZone)

	// 1. Corridor: обе зоны разрешены и есть подходящая коридорная запись
	if pickupZone != nil && dropZone != nil {
		matched, err := uc.tryCorridor(ctx, card, cfg, pickupZone, dropZone, band)
		if err != nil {
			return nil, localTime, err
		}
		if matched {
			card, err := uc.withSurgeRules(ctx, card, cfg)
			return card, localTime, err
		}
	}

	// 2-3. Зонные переопределения pickup-зоны
	if pickupZone != nil {
		matched, err := uc.tryZoneOverride(ctx, card, pickupZone, vehicleType, band)
		if err != nil {
			return nil, localTime, err
		}
		if matched {
			card, err := uc.withSurgeRules(ctx, card, cfg)
			return card, localTime, err
		}
	}

	// 4. City default: городские полосы, если настроены
	citySlabs, err := uc.pricingRepo.ListCitySlabs(ctx, city, vehicleType)
	if err != nil {
		uc.logger.Error("Failed to list city slabs", zap.String("city", city), zap.Error(err))
		return nil, localTime, err
	}
	if len(citySlabs) > 0 {
		card.Mode = domain.RateModeSlab
		card.Slabs = citySlabs
	}
	if pickupZone != nil {
		card.ZoneMultiplier = pickupZone.EffectiveMultiplier()
	}

	card, err = uc.withSurgeRules(ctx, card, cfg)
	return card, localTime, err
}

// cardFromConfig - базовая карта city-default из активного конфига
func (uc *RateResolverUseCase) cardFromConfig(cfg *domain.PricingConfig, band domain.TimeBand) *domain.RateCard {
	return &domain.RateCard{
		City:        cfg.City,
		VehicleType: cfg.VehicleType,
		Source:      domain.RateSourceCityDefault,
		Mode:        domain.RateModeLinear,
		TimeBand:    band,

		BaseFare:      cfg.BaseFare,
		MinFare:       cfg.MinFare,
		BaseDistanceM: cfg.BaseDistanceM,
		PerKMRate:     cfg.PerKMRate,

		VehicleMultiplier: cfg.VehicleMultiplier,
		CityMultiplier:    cfg.CityMultiplier,
		ZoneMultiplier:    decimal.NewFromInt(1),

		VarianceBufferPct: cfg.VarianceBufferPct,
		VarianceBufferMin: cfg.VarianceBufferMin,
		VarianceBufferMax: cfg.VarianceBufferMax,

		HighValueThreshold: cfg.HighValueThreshold,
		HighValueBufferPct: cfg.HighValueBufferPct,
		HighValueBufferMin: cfg.HighValueBufferMin,

		MinMarginPct:  cfg.MinMarginPct,
		MinMarginFlat: cfg.MinMarginFlat,

		Timezone:              cfg.Timezone,
		QuoteValidityMinutes:  cfg.QuoteValidityMinutes,
		ReturnTripDiscountPct: cfg.ReturnTripDiscountPct,
	}
}

// applySideChannel извлекает боковые надбавки из первичной зоны
// (pickup предпочтительно, иначе drop) независимо от сработавшей ветки.
// ODA-надбавка ненулевая только когда оба конца вне зоны доставки.
func (uc *RateResolverUseCase) applySideChannel(card *domain.RateCard, pickupZone, dropZone *domain.Zone) {
	primary := pickupZone
	if primary == nil {
		primary = dropZone
	}
	if primary == nil {
		return
	}

	card.FuelSurchargePct = primary.FuelSurchargePct
	card.SpecialLocationSurcharge = primary.SpecialLocationSurcharge

	oda := domain.ODAConfig{
		PickupIsODA: pickupZone != nil && pickupZone.IsODA,
		DropIsODA:   dropZone != nil && dropZone.IsODA,
	}
	oda.BothODA = oda.PickupIsODA && oda.DropIsODA
	if oda.BothODA {
		oda.SurchargePct = primary.ODASurchargePct
	}
	card.ODA = oda
}

// tryCorridor применяет коридорный тариф. Коридорные ставки
// предкалиброваны: зонный множитель принудительно 1.0, ставка линейная;
// зонные полосы прилагаются только для отчётности.
func (uc *RateResolverUseCase) tryCorridor(
	ctx context.Context,
	card *domain.RateCard,
	cfg *domain.PricingConfig,
	pickupZone, dropZone *domain.Zone,
	band domain.TimeBand,
) (bool, error) {
	pairs, err := uc.pricingRepo.ListZonePairPricing(ctx, cfg.City, pickupZone.Code, dropZone.Code, cfg.VehicleType)
	if err != nil {
		uc.logger.Error("Failed to list zone pair pricing", zap.Error(err))
		return false, err
	}

	pair := domain.MatchZonePair(pairs, pickupZone.Code, dropZone.Code, band)
	if pair == nil {
		return false, nil
	}

	card.Source = domain.RateSourceCorridor
	card.Mode = domain.RateModeLinear
	card.BaseFare = pair.BaseFare
	card.MinFare = pair.MinFare
	card.PerKMRate = pair.PerKMRate
	card.BaseDistanceM = 0
	card.ZoneMultiplier = decimal.NewFromInt(1)

	zoneSlabs, err := uc.pricingRepo.ListZoneSlabs(ctx, pickupZone.ID, cfg.VehicleType)
	if err != nil {
		uc.logger.Error("Failed to list zone slabs", zap.Error(err))
		return false, err
	}
	card.Slabs = zoneSlabs

	uc.logger.Debug("Corridor rate matched",
		zap.String("from_zone", pickupZone.Code),
		zap.String("to_zone", dropZone.Code),
		zap.Int64("pair_id", pair.ID))
	return true, nil
}

// tryZoneOverride применяет зонное переопределение pickup-зоны:
// сначала time-band запись (предкалиброванная, зонный множитель 1.0),
// иначе базовые зонные ставки с эффективным множителем зоны
func (uc *RateResolverUseCase) tryZoneOverride(
	ctx context.Context,
	card *domain.RateCard,
	zone *domain.Zone,
	vehicleType string,
	band domain.TimeBand,
) (bool, error) {
	zvp, err := uc.pricingRepo.GetZoneVehiclePricing(ctx, zone.ID, vehicleType)
	if err != nil {
		uc.logger.Error("Failed to load zone vehicle pricing",
			zap.Int64("zone_id", zone.ID),
			zap.Error(err))
		return false, err
	}
	if zvp == nil {
		return false, nil
	}

	zoneSlabs, err := uc.pricingRepo.ListZoneSlabs(ctx, zone.ID, vehicleType)
	if err != nil {
		uc.logger.Error("Failed to list zone slabs", zap.Error(err))
		return false, err
	}

	card.BaseDistanceM = zvp.BaseDistanceM
	if len(zoneSlabs) > 0 {
		card.Mode = domain.RateModeZoneSlab
		card.Slabs = zoneSlabs
	} else {
		card.Mode = domain.RateModeLinear
	}

	if tp := zvp.TimePricingFor(band); tp != nil {
		card.Source = domain.RateSourceZoneTimeBand
		card.BaseFare = tp.BaseFare
		card.MinFare = tp.MinFare
		card.PerKMRate = tp.PerKMRate
		card.ZoneMultiplier = decimal.NewFromInt(1)
		return true, nil
	}

	card.Source = domain.RateSourceZoneBase
	card.BaseFare = zvp.BaseFare
	card.MinFare = zvp.MinFare
	card.PerKMRate = zvp.PerKMRate
	card.ZoneMultiplier = zone.EffectiveMultiplier()
	return true, nil
}

func (uc *RateResolverUseCase) withSurgeRules(
	ctx context.Context,
	card *domain.RateCard,
	cfg *domain.PricingConfig,
) (*domain.RateCard, error) {
	rules, err := uc.pricingRepo.ListSurgeRules(ctx, cfg.ID)
	if err != nil {
		uc.logger.Error("Failed to list surge rules", zap.Int64("config_id", cfg.ID), zap.Error(err))
		return nil, err
	}
	card.SurgeRules = rules
	return card, nil
}
