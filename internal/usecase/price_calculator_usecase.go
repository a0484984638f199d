package usecase

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/domain"
	"github.com/delivery-pricing-service/internal/pkg/errors"
)

// priceRoundingStep - финальная цена поднимается вверх до ближайшей
// тысячи минорных единиц
const priceRoundingStep = 1000

var oneHundred = decimal.NewFromInt(100)

// PriceCalculatorUseCase - детерминированный конвейер расчёта цены.
// Вся денежная математика в целых минорных единицах; decimal-арифметика
// только для множителей и процентов, с округлением до целого на каждом
// шаге конвейера, а не один раз в конце.
type PriceCalculatorUseCase struct {
	logger *zap.Logger
}

// NewPriceCalculatorUseCase - создание нового PriceCalculatorUseCase
func NewPriceCalculatorUseCase(logger *zap.Logger) *PriceCalculatorUseCase {
	return &PriceCalculatorUseCase{logger: logger}
}

// Calculate выполняет расчёт цены по тарифной карте и маршруту.
// Для фиксированных входов (включая localTime) результат идентичен:
// ни скрытой случайности, ни обращения к настенным часам.
func (uc *PriceCalculatorUseCase) Calculate(
	card *domain.RateCard,
	route *domain.RouteResult,
	itemValue *int64,
	localTime time.Time,
) (*domain.PriceBreakdown, error) {
	if err := uc.validate(card, route); err != nil {
		return nil, err
	}

	distanceKM := float64(route.DistanceM) / 1000.0

	// Шаг 1: базовая ставка не ниже минимальной
	baseFare := card.BaseFare
	if card.MinFare > baseFare {
		baseFare = card.MinFare
	}

	// Шаг 2: платная дистанция за вычетом бесплатного допуска
	chargeableM := route.DistanceM - card.BaseDistanceM
	if chargeableM < 0 {
		chargeableM = 0
	}

	// Шаг 3: округление вверх до целых километров
	chargeableKM := (chargeableM + 999) / 1000

	// Шаг 4: дистанционная составляющая. Режимы взаимоисключающие:
	// линейная ставка по платным километрам либо телескопические полосы
	// по полной дистанции.
	var distanceComponent int64
	if card.Mode == domain.RateModeLinear {
		distanceComponent = chargeableKM * card.PerKMRate
	} else {
		distanceComponent = domain.SlabCost(card.Slabs, distanceKM)
	}

	// Шаг 5
	rawSubtotal := baseFare + distanceComponent

	// Шаг 6: surge с потолком 2.0; traffic ratio проходит санити-фильтр
	// и попадает только в breakdown
	var trafficRatio *float64
	if ratio, ok := domain.TrafficRatio(route.DurationS, route.DurationInTrafficS); ok {
		trafficRatio = &ratio
	}

	surge := domain.SurgeMultiplier(card.VehicleType, localTime, distanceKM)
	var surgeRuleID *int64
	if rule := domain.ResolveSurgeRule(card.SurgeRules, localTime, trafficRatio); rule != nil {
		surge, _ = rule.Multiplier.Float64()
		surgeRuleID = &rule.ID
	}
	if surge > domain.SurgeMultiplierCap {
		surge = domain.SurgeMultiplierCap
	}
	surgeDec := decimal.NewFromFloat(surge).Round(3)

	// Шаг 7: точная decimal-арифметика до округления
	multiplied := decimal.NewFromInt(rawSubtotal).
		Mul(card.VehicleMultiplier).
		Mul(card.CityMultiplier).
		Mul(card.ZoneMultiplier).
		Mul(surgeDec).
		Round(0).IntPart()

	// Боковые надбавки из зонного side-channel
	fuelSurcharge := pctOf(multiplied, card.FuelSurchargePct)
	var odaSurcharge int64
	if card.ODA.BothODA {
		odaSurcharge = pctOf(multiplied, card.ODA.SurchargePct)
	}
	specialSurcharge := card.SpecialLocationSurcharge

	// Шаг 8: буфер дисперсии с границами
	varianceBuffer := pctOf(multiplied, card.VarianceBufferPct)
	if varianceBuffer < card.VarianceBufferMin {
		varianceBuffer = card.VarianceBufferMin
	}
	if card.VarianceBufferMax > 0 && varianceBuffer > card.VarianceBufferMax {
		varianceBuffer = card.VarianceBufferMax
	}

	// Шаг 9: буфер дорогих грузов
	var highValueBuffer int64
	if itemValue != nil && *itemValue > card.HighValueThreshold {
		highValueBuffer = pctOf(*itemValue, card.HighValueBufferPct)
		if highValueBuffer < card.HighValueBufferMin {
			highValueBuffer = card.HighValueBufferMin
		}
	}

	// Шаг 10: маржинальный guardrail - маржа только добавляется,
	// даже если misconfiguration даёт отрицательный margin_total
	subtotalWithBuffers := multiplied + varianceBuffer + highValueBuffer +
		fuelSurcharge + odaSurcharge + specialSurcharge
	marginTotal := pctOf(subtotalWithBuffers, card.MinMarginPct) + card.MinMarginFlat
	priceAfterMargin := subtotalWithBuffers + marginTotal
	if priceAfterMargin < subtotalWithBuffers {
		priceAfterMargin = subtotalWithBuffers
	}

	// Шаг 11: вверх до ближайшей тысячи, затем аварийный пол min_fare.
	// Пол тоже поднимается до тысячи, чтобы сохранить инвариант
	// final_price mod 1000 == 0.
	finalPrice := ceilToStep(priceAfterMargin, priceRoundingStep)
	if finalPrice < card.MinFare {
		finalPrice = ceilToStep(card.MinFare, priceRoundingStep)
	}

	breakdown := &domain.PriceBreakdown{
		RateSource:   card.Source,
		RateMode:     card.Mode,
		TimeBand:     domain.TimeBandFor(localTime),
		DistanceBand: domain.DistanceBandFor(distanceKM),

		BaseFare:            baseFare,
		ChargeableDistanceM: chargeableM,
		ChargeableKM:        chargeableKM,
		DistanceComponent:   distanceComponent,
		RawSubtotal:         rawSubtotal,

		VehicleMultiplier: card.VehicleMultiplier,
		CityMultiplier:    card.CityMultiplier,
		ZoneMultiplier:    card.ZoneMultiplier,
		SurgeMultiplier:   surgeDec,
		TrafficRatio:      trafficRatio,
		SurgeRuleID:       surgeRuleID,

		Multiplied: multiplied,

		FuelSurcharge:            fuelSurcharge,
		ODASurcharge:             odaSurcharge,
		SpecialLocationSurcharge: specialSurcharge,

		VarianceBuffer:      varianceBuffer,
		HighValueBuffer:     highValueBuffer,
		SubtotalWithBuffers: subtotalWithBuffers,

		MarginTotal:      marginTotal,
		PriceAfterMargin: priceAfterMargin,

		FinalPrice: finalPrice,
		MinFare:    card.MinFare,
	}

	return breakdown, nil
}

// validate проверяет обязательные поля тарифной карты. Отсутствие
// обязательного поля - ошибка конфигурации, фатальная для расчёта;
// опциональные отсутствия (item value, traffic duration) имеют
// спроектированные значения по умолчанию и ошибкой не являются.
func (uc *PriceCalculatorUseCase) validate(card *domain.RateCard, route *domain.RouteResult) error {
	if card == nil || route == nil {
		return errors.ErrCalculationError.WithDetails(map[string]interface{}{
			"reason": "rate card or route missing",
		})
	}
	if route.DistanceM < 0 {
		return errors.ErrCalculationError.WithDetails(map[string]interface{}{
			"reason":     "negative distance",
			"distance_m": route.DistanceM,
		})
	}
	if card.BaseFare < 0 || card.MinFare < 0 {
		return errors.ErrCalculationError.WithDetails(map[string]interface{}{
			"reason": "negative fares in rate card",
		})
	}
	if card.Mode == domain.RateModeLinear && card.PerKMRate <= 0 {
		return errors.ErrCalculationError.WithDetails(map[string]interface{}{
			"reason": "missing per_km_rate for linear rate card",
			"source": card.Source,
		})
	}
	if card.Mode != domain.RateModeLinear && len(card.Slabs) == 0 {
		return errors.ErrCalculationError.WithDetails(map[string]interface{}{
			"reason": "missing distance slabs for slab rate card",
			"source": card.Source,
		})
	}
	if card.VehicleMultiplier.IsZero() || card.CityMultiplier.IsZero() || card.ZoneMultiplier.IsZero() {
		return errors.ErrCalculationError.WithDetails(map[string]interface{}{
			"reason": "zero multiplier in rate card",
		})
	}
	return nil
}

// pctOf - round(amount * pct / 100) в минорных единицах
func pctOf(amount int64, pct decimal.Decimal) int64 {
	if pct.IsZero() {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(pct).Div(oneHundred).Round(0).IntPart()
}

// ceilToStep поднимает сумму вверх до ближайшего кратного step
func ceilToStep(amount, step int64) int64 {
	if amount <= 0 {
		return 0
	}
	return (amount + step - 1) / step * step
}
