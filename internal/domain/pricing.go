package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingConfig - версионируемый городской конфиг (city x vehicle).
// В любой момент ровно одна активная, действующая версия на пару:
// создание новой версии атомарно закрывает предыдущую
// (effective_until = now, active = false) и открывает следующую (version+1).
// Все денежные поля - int64 в минорных единицах валюты; множители
// хранятся с точностью 3 знака, проценты - 2 знака.
type PricingConfig struct {
	ID          int64  `db:"id" json:"id"`
	City        string `db:"city" json:"city"`
	VehicleType string `db:"vehicle_type" json:"vehicle_type"`

	BaseFare      int64 `db:"base_fare" json:"base_fare"`
	MinFare       int64 `db:"min_fare" json:"min_fare"`
	BaseDistanceM int64 `db:"base_distance_m" json:"base_distance_m"`
	PerKMRate     int64 `db:"per_km_rate" json:"per_km_rate"`

	VehicleMultiplier decimal.Decimal `db:"vehicle_multiplier" json:"vehicle_multiplier"`
	CityMultiplier    decimal.Decimal `db:"city_multiplier" json:"city_multiplier"`

	VarianceBufferPct decimal.Decimal `db:"variance_buffer_pct" json:"variance_buffer_pct"`
	VarianceBufferMin int64           `db:"variance_buffer_min" json:"variance_buffer_min"`
	VarianceBufferMax int64           `db:"variance_buffer_max" json:"variance_buffer_max"`

	HighValueThreshold int64           `db:"high_value_threshold" json:"high_value_threshold"`
	HighValueBufferPct decimal.Decimal `db:"high_value_buffer_pct" json:"high_value_buffer_pct"`
	HighValueBufferMin int64           `db:"high_value_buffer_min" json:"high_value_buffer_min"`

	MinMarginPct  decimal.Decimal `db:"min_margin_pct" json:"min_margin_pct"`
	MinMarginFlat int64           `db:"min_margin_flat" json:"min_margin_flat"`

	Timezone              string          `db:"timezone" json:"timezone"`
	QuoteValidityMinutes  int             `db:"quote_validity_minutes" json:"quote_validity_minutes"`
	ReturnTripDiscountPct decimal.Decimal `db:"return_trip_discount_pct" json:"return_trip_discount_pct"`

	Version        int        `db:"version" json:"version"`
	Active         bool       `db:"active" json:"active"`
	EffectiveFrom  time.Time  `db:"effective_from" json:"effective_from"`
	EffectiveUntil *time.Time `db:"effective_until" json:"effective_until,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// ZoneVehiclePricing - зонное переопределение базовых ставок для машины
type ZoneVehiclePricing struct {
	ID            int64  `db:"id" json:"id"`
	ZoneID        int64  `db:"zone_id" json:"zone_id"`
	VehicleType   string `db:"vehicle_type" json:"vehicle_type"`
	BaseFare      int64  `db:"base_fare" json:"base_fare"`
	MinFare       int64  `db:"min_fare" json:"min_fare"`
	BaseDistanceM int64  `db:"base_distance_m" json:"base_distance_m"`
	PerKMRate     int64  `db:"per_km_rate" json:"per_km_rate"`

	// 0..3 дочерних записей, по одной на временной диапазон
	TimePricing []ZoneVehicleTimePricing `db:"-" json:"time_pricing,omitempty"`
}

// TimePricingFor возвращает переопределение для диапазона, если оно есть
func (p *ZoneVehiclePricing) TimePricingFor(band TimeBand) *ZoneVehicleTimePricing {
	for i := range p.TimePricing {
		if p.TimePricing[i].TimeBand == band {
			return &p.TimePricing[i]
		}
	}
	return nil
}

// ZoneVehicleTimePricing - переопределение ставок на временной диапазон
type ZoneVehicleTimePricing struct {
	ID                   int64    `db:"id" json:"id"`
	ZoneVehiclePricingID int64    `db:"zone_vehicle_pricing_id" json:"zone_vehicle_pricing_id"`
	TimeBand             TimeBand `db:"time_band" json:"time_band"`
	BaseFare             int64    `db:"base_fare" json:"base_fare"`
	MinFare              int64    `db:"min_fare" json:"min_fare"`
	PerKMRate            int64    `db:"per_km_rate" json:"per_km_rate"`
}

// ZonePairVehiclePricing - "коридорный" тариф для пары зон.
// Коридорные ставки предкалиброваны: зонные множители при их
// использовании обнуляются до 1.0 (corridor bypass).
type ZonePairVehiclePricing struct {
	ID           int64     `db:"id" json:"id"`
	City         string    `db:"city" json:"city"`
	FromZoneCode string    `db:"from_zone_code" json:"from_zone_code"`
	ToZoneCode   string    `db:"to_zone_code" json:"to_zone_code"`
	VehicleType  string    `db:"vehicle_type" json:"vehicle_type"`
	TimeBand     *TimeBand `db:"time_band" json:"time_band,omitempty"`
	BaseFare     int64     `db:"base_fare" json:"base_fare"`
	MinFare      int64     `db:"min_fare" json:"min_fare"`
	PerKMRate    int64     `db:"per_km_rate" json:"per_km_rate"`
	Directional  bool      `db:"directional" json:"directional"`
	Active       bool      `db:"active" json:"active"`
}

// MatchZonePair выбирает коридорную запись в порядке:
// точная (from,to,band) -> без band -> обратная пара с directional=false
// и band -> обратная без band. Записи приходят для обоих направлений пары.
func MatchZonePair(pairs []ZonePairVehiclePricing, fromCode, toCode string, band TimeBand) *ZonePairVehiclePricing {
	type predicate func(p *ZonePairVehiclePricing) bool

	lookups := []predicate{
		func(p *ZonePairVehiclePricing) bool {
			return p.FromZoneCode == fromCode && p.ToZoneCode == toCode &&
				p.TimeBand != nil && *p.TimeBand == band
		},
		func(p *ZonePairVehiclePricing) bool {
			return p.FromZoneCode == fromCode && p.ToZoneCode == toCode &&
				p.TimeBand == nil
		},
		func(p *ZonePairVehiclePricing) bool {
			return p.FromZoneCode == toCode && p.ToZoneCode == fromCode &&
				!p.Directional && p.TimeBand != nil && *p.TimeBand == band
		},
		func(p *ZonePairVehiclePricing) bool {
			return p.FromZoneCode == toCode && p.ToZoneCode == fromCode &&
				!p.Directional && p.TimeBand == nil
		},
	}

	for _, match := range lookups {
		for i := range pairs {
			pair := &pairs[i]
			if !pair.Active {
				continue
			}
			if match(pair) {
				return pair
			}
		}
	}
	return nil
}

// RateMode - способ расчёта дистанционной составляющей
type RateMode string

const (
	RateModeLinear   RateMode = "linear"
	RateModeSlab     RateMode = "slab"
	RateModeZoneSlab RateMode = "zone_slab"
)

// ODAConfig - флаги Out-of-Delivery-Area для обоих концов поездки.
// Надбавка ненулевая только когда оба конца за пределами зоны доставки.
type ODAConfig struct {
	PickupIsODA  bool            `json:"pickup_is_oda"`
	DropIsODA    bool            `json:"drop_is_oda"`
	BothODA      bool            `json:"both_oda"`
	SurchargePct decimal.Decimal `json:"surcharge_pct"`
}

// RateCard - нормализованный результат разрешения тарифа: одна карта
// ставок плюс боковые надбавки независимо от сработавшей ветки
type RateCard struct {
	City        string   `json:"city"`
	VehicleType string   `json:"vehicle_type"`
	Source      string   `json:"source"`
	Mode        RateMode `json:"mode"`
	TimeBand    TimeBand `json:"time_band"`

	BaseFare      int64 `json:"base_fare"`
	MinFare       int64 `json:"min_fare"`
	BaseDistanceM int64 `json:"base_distance_m"`
	PerKMRate     int64 `json:"per_km_rate"`

	// Slabs заполняются в режимах slab/zone_slab; в corridor-ветке зонные
	// полосы могут прилагаться только для отчётности (ставка линейная)
	Slabs []DistanceSlab `json:"slabs,omitempty"`

	VehicleMultiplier decimal.Decimal `json:"vehicle_multiplier"`
	CityMultiplier    decimal.Decimal `json:"city_multiplier"`
	ZoneMultiplier    decimal.Decimal `json:"zone_multiplier"`

	FuelSurchargePct         decimal.Decimal `json:"fuel_surcharge_pct"`
	SpecialLocationSurcharge int64           `json:"special_location_surcharge"`
	ODA                      ODAConfig       `json:"oda"`

	VarianceBufferPct decimal.Decimal `json:"variance_buffer_pct"`
	VarianceBufferMin int64           `json:"variance_buffer_min"`
	VarianceBufferMax int64           `json:"variance_buffer_max"`

	HighValueThreshold int64           `json:"high_value_threshold"`
	HighValueBufferPct decimal.Decimal `json:"high_value_buffer_pct"`
	HighValueBufferMin int64           `json:"high_value_buffer_min"`

	MinMarginPct  decimal.Decimal `json:"min_margin_pct"`
	MinMarginFlat int64           `json:"min_margin_flat"`

	Timezone              string          `json:"timezone"`
	QuoteValidityMinutes  int             `json:"quote_validity_minutes"`
	ReturnTripDiscountPct decimal.Decimal `json:"return_trip_discount_pct"`

	SurgeRules []SurgeRule `json:"-"`
}
