package usecase_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/domain"
	"github.com/delivery-pricing-service/internal/pkg/errors"
	"github.com/delivery-pricing-service/internal/usecase"
)

// neutralCard - линейная карта с единичными множителями и нулевыми
// буферами: конвейер сводится к чистой дистанционной математике
func neutralCard() *domain.RateCard {
	return &domain.RateCard{
		City:        "bangalore",
		VehicleType: "two_wheeler",
		Source:      domain.RateSourceCityDefault,
		Mode:        domain.RateModeLinear,

		BaseFare:  3000,
		MinFare:   3000,
		PerKMRate: 900,

		VehicleMultiplier: decimal.NewFromInt(1),
		CityMultiplier:    decimal.NewFromInt(1),
		ZoneMultiplier:    decimal.NewFromInt(1),
	}
}

func route(distanceM, durationS int64) *domain.RouteResult {
	return &domain.RouteResult{
		DistanceM: distanceM,
		DurationS: durationS,
		Provider:  domain.ProviderGoogleMaps,
	}
}

var (
	// 09:30, morning band
	morning = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	// 20:00, evening band; для small-категории evening-множитель
	// нейтрален и surge не искажает ассерты
	evening = time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)
)

func TestPriceCalculatorUseCase_ZoneMorningShortTrip(t *testing.T) {
	uc := usecase.NewPriceCalculatorUseCase(zap.NewNop())

	card := neutralCard()
	card.Source = domain.RateSourceZoneTimeBand
	card.BaseFare = 4000
	card.MinFare = 4000
	card.PerKMRate = 850

	bd, err := uc.Calculate(card, route(1400, 420), nil, morning)
	assert.NoError(t, err)

	assert.Equal(t, int64(4000), bd.BaseFare)
	assert.Equal(t, int64(2), bd.ChargeableKM)
	assert.Equal(t, int64(1700), bd.DistanceComponent)
	assert.Equal(t, int64(5700), bd.RawSubtotal)

	// two_wheeler morning micro: 1 + (0.98 - 1) * 1.5 = 0.97
	assert.Equal(t, "0.97", bd.SurgeMultiplier.String())
	assert.Equal(t, int64(5529), bd.Multiplied)
	assert.Equal(t, int64(6000), bd.FinalPrice)
	assert.Zero(t, bd.FinalPrice%1000)
}

func TestPriceCalculatorUseCase_CorridorNoDoubleZoneMultiplier(t *testing.T) {
	uc := usecase.NewPriceCalculatorUseCase(zap.NewNop())

	card := neutralCard()
	card.Source = domain.RateSourceCorridor
	card.BaseFare = 25000
	card.MinFare = 25000
	card.PerKMRate = 2800
	card.BaseDistanceM = 0

	bd, err := uc.Calculate(card, route(7000, 1500), nil, evening)
	assert.NoError(t, err)

	assert.Equal(t, int64(7), bd.ChargeableKM)
	assert.Equal(t, int64(19600), bd.DistanceComponent)
	assert.Equal(t, int64(44600), bd.RawSubtotal)
	// коридорная карта несёт зонный множитель 1.0: предкалиброванная
	// ставка не умножается повторно
	assert.True(t, bd.ZoneMultiplier.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, int64(44600), bd.Multiplied)
	assert.Equal(t, int64(45000), bd.FinalPrice)
}

func TestPriceCalculatorUseCase_SlabModeUsesFullDistance(t *testing.T) {
	uc := usecase.NewPriceCalculatorUseCase(zap.NewNop())

	card := neutralCard()
	card.Mode = domain.RateModeSlab
	card.PerKMRate = 0
	card.Slabs = []domain.DistanceSlab{
		{MinKM: 0, MaxKM: floatPtr(2.5), PerKMRate: 333},
		{MinKM: 2.5, PerKMRate: 777},
	}

	bd, err := uc.Calculate(card, route(4200, 900), nil, evening)
	assert.NoError(t, err)

	// полосы считаются по полной дистанции 4.2 км:
	// round(2.5*333) + round(1.7*777) = 833 + 1321
	assert.Equal(t, int64(2154), bd.DistanceComponent)
	assert.Equal(t, domain.RateModeSlab, bd.RateMode)
}

func TestPriceCalculatorUseCase_MinFareFloorKeepsRounding(t *testing.T) {
	uc := usecase.NewPriceCalculatorUseCase(zap.NewNop())

	card := neutralCard()
	card.BaseFare = 1000
	card.MinFare = 7500
	card.PerKMRate = 100

	bd, err := uc.Calculate(card, route(500, 120), nil, evening)
	assert.NoError(t, err)

	// пол min_fare тоже поднят до тысячи
	assert.GreaterOrEqual(t, bd.FinalPrice, card.MinFare)
	assert.Zero(t, bd.FinalPrice%1000)
	assert.Equal(t, int64(8000), bd.FinalPrice)
}

func TestPriceCalculatorUseCase_MarginGuardrail(t *testing.T) {
	uc := usecase.NewPriceCalculatorUseCase(zap.NewNop())

	card := neutralCard()
	card.MinMarginFlat = -900000

	bd, err := uc.Calculate(card, route(3000, 600), nil, evening)
	assert.NoError(t, err)

	// маржа только добавляется: отрицательный итог не режет субтотал
	assert.Equal(t, bd.SubtotalWithBuffers, bd.PriceAfterMargin)
}

func TestPriceCalculatorUseCase_SurgeRuleCapped(t *testing.T) {
	uc := usecase.NewPriceCalculatorUseCase(zap.NewNop())

	card := neutralCard()
	card.SurgeRules = []domain.SurgeRule{
		{
			ID:         42,
			RuleType:   domain.SurgeRuleTimeOfDay,
			StartHour:  intPtr(0),
			EndHour:    intPtr(24),
			Multiplier: decimal.NewFromFloat(3.5),
			Priority:   10,
			Active:     true,
		},
	}

	bd, err := uc.Calculate(card, route(3000, 600), nil, evening)
	assert.NoError(t, err)

	assert.Equal(t, "2", bd.SurgeMultiplier.String())
	assert.NotNil(t, bd.SurgeRuleID)
	assert.Equal(t, int64(42), *bd.SurgeRuleID)
}

func TestPriceCalculatorUseCase_TrafficRatioSanityFilter(t *testing.T) {
	uc := usecase.NewPriceCalculatorUseCase(zap.NewNop())

	t.Run("absurd ratio discarded", func(t *testing.T) {
		r := route(5000, 600)
		r.DurationInTrafficS = int64Ptr(2400) // ratio 4.0, вне [0.8, 3.0]

		bd, err := uc.Calculate(neutralCard(), r, nil, evening)
		assert.NoError(t, err)
		assert.Nil(t, bd.TrafficRatio)
	})

	t.Run("plausible ratio recorded", func(t *testing.T) {
		r := route(5000, 600)
		r.DurationInTrafficS = int64Ptr(900) // ratio 1.5

		bd, err := uc.Calculate(neutralCard(), r, nil, evening)
		assert.NoError(t, err)
		assert.NotNil(t, bd.TrafficRatio)
		assert.InDelta(t, 1.5, *bd.TrafficRatio, 0.001)
	})
}

func TestPriceCalculatorUseCase_HighValueBuffer(t *testing.T) {
	uc := usecase.NewPriceCalculatorUseCase(zap.NewNop())

	card := neutralCard()
	card.HighValueThreshold = 1000000
	card.HighValueBufferPct = decimal.NewFromInt(2)
	card.HighValueBufferMin = 5000

	t.Run("below threshold", func(t *testing.T) {
		bd, err := uc.Calculate(card, route(3000, 600), int64Ptr(500000), evening)
		assert.NoError(t, err)
		assert.Zero(t, bd.HighValueBuffer)
	})

	t.Run("above threshold with min floor", func(t *testing.T) {
		// 2% от 1.2M = 24000 > пол 5000
		bd, err := uc.Calculate(card, route(3000, 600), int64Ptr(1200000), evening)
		assert.NoError(t, err)
		assert.Equal(t, int64(24000), bd.HighValueBuffer)
	})

	t.Run("min floor applies", func(t *testing.T) {
		// 2% от 1000001 = 20000... чуть выше порога с буфером ниже пола
		small := neutralCard()
		small.HighValueThreshold = 100000
		small.HighValueBufferPct = decimal.NewFromInt(2)
		small.HighValueBufferMin = 5000

		bd, err := uc.Calculate(small, route(3000, 600), int64Ptr(150000), evening)
		assert.NoError(t, err)
		// 2% от 150000 = 3000 < 5000
		assert.Equal(t, int64(5000), bd.HighValueBuffer)
	})
}

func TestPriceCalculatorUseCase_ValidationErrors(t *testing.T) {
	uc := usecase.NewPriceCalculatorUseCase(zap.NewNop())

	t.Run("linear without per km rate", func(t *testing.T) {
		card := neutralCard()
		card.PerKMRate = 0

		_, err := uc.Calculate(card, route(3000, 600), nil, evening)
		assert.ErrorIs(t, err, errors.ErrCalculationError)
	})

	t.Run("slab mode without slabs", func(t *testing.T) {
		card := neutralCard()
		card.Mode = domain.RateModeSlab
		card.Slabs = nil

		_, err := uc.Calculate(card, route(3000, 600), nil, evening)
		assert.ErrorIs(t, err, errors.ErrCalculationError)
	})

	t.Run("zero multiplier", func(t *testing.T) {
		card := neutralCard()
		card.CityMultiplier = decimal.Zero

		_, err := uc.Calculate(card, route(3000, 600), nil, evening)
		assert.ErrorIs(t, err, errors.ErrCalculationError)
	})

	t.Run("negative distance", func(t *testing.T) {
		_, err := uc.Calculate(neutralCard(), route(-1, 600), nil, evening)
		assert.ErrorIs(t, err, errors.ErrCalculationError)
	})
}

func TestPriceCalculatorUseCase_PriceMonotonicInDistance(t *testing.T) {
	uc := usecase.NewPriceCalculatorUseCase(zap.NewNop())

	var prev int64
	for _, distanceM := range []int64{1000, 3000, 7000, 12000, 20000, 35000} {
		bd, err := uc.Calculate(neutralCard(), route(distanceM, distanceM/7), nil, evening)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, bd.FinalPrice, prev, "distance %d", distanceM)
		assert.Zero(t, bd.FinalPrice%1000)
		prev = bd.FinalPrice
	}
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
