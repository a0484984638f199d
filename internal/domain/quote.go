package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RouteResult - разрешённые дистанция и длительность маршрута
type RouteResult struct {
	DistanceM          int64  `json:"distance_m"`
	DurationS          int64  `json:"duration_s"`
	DurationInTrafficS *int64 `json:"duration_in_traffic_s,omitempty"`
	Provider           string `json:"provider"`
	CacheKey           string `json:"cache_key,omitempty"`
}

// PriceBreakdown - полная раскладка расчёта цены. Каждая промежуточная
// величина конвейера присутствует для прозрачности и тестовых ассертов;
// после построения breakdown не мутируется.
type PriceBreakdown struct {
	RateSource   string       `json:"rate_source"`
	RateMode     RateMode     `json:"rate_mode"`
	TimeBand     TimeBand     `json:"time_band"`
	DistanceBand DistanceBand `json:"distance_band"`

	BaseFare             int64 `json:"base_fare"`
	ChargeableDistanceM  int64 `json:"chargeable_distance_m"`
	ChargeableKM         int64 `json:"chargeable_km"`
	DistanceComponent    int64 `json:"distance_component"`
	RawSubtotal          int64 `json:"raw_subtotal"`

	VehicleMultiplier decimal.Decimal `json:"vehicle_multiplier"`
	CityMultiplier    decimal.Decimal `json:"city_multiplier"`
	ZoneMultiplier    decimal.Decimal `json:"zone_multiplier"`
	SurgeMultiplier   decimal.Decimal `json:"surge_multiplier"`
	TrafficRatio      *float64        `json:"traffic_ratio,omitempty"`
	SurgeRuleID       *int64          `json:"surge_rule_id,omitempty"`

	Multiplied int64 `json:"multiplied"`

	FuelSurcharge            int64 `json:"fuel_surcharge"`
	ODASurcharge             int64 `json:"oda_surcharge"`
	SpecialLocationSurcharge int64 `json:"special_location_surcharge"`

	VarianceBuffer      int64 `json:"variance_buffer"`
	HighValueBuffer     int64 `json:"high_value_buffer"`
	SubtotalWithBuffers int64 `json:"subtotal_with_buffers"`

	MarginTotal      int64 `json:"margin_total"`
	PriceAfterMargin int64 `json:"price_after_margin"`

	FinalPrice int64 `json:"final_price"`
	MinFare    int64 `json:"min_fare"`
}

// Quote - неизменяемая запись одной расчитанной котировки.
// Единственная последующая мутация - привязка парной котировки
// туда-обратно (linked_quote_id, trip_leg).
type Quote struct {
	ID          uuid.UUID `db:"id" json:"id"`
	City        string    `db:"city" json:"city"`
	VehicleType string    `db:"vehicle_type" json:"vehicle_type"`

	PickupLatRaw float64 `db:"pickup_lat_raw" json:"pickup_lat_raw"`
	PickupLngRaw float64 `db:"pickup_lng_raw" json:"pickup_lng_raw"`
	DropLatRaw   float64 `db:"drop_lat_raw" json:"drop_lat_raw"`
	DropLngRaw   float64 `db:"drop_lng_raw" json:"drop_lng_raw"`

	PickupLat float64 `db:"pickup_lat" json:"pickup_lat"`
	PickupLng float64 `db:"pickup_lng" json:"pickup_lng"`
	DropLat   float64 `db:"drop_lat" json:"drop_lat"`
	DropLng   float64 `db:"drop_lng" json:"drop_lng"`

	DistanceM          int64  `db:"distance_m" json:"distance_m"`
	DurationS          int64  `db:"duration_s" json:"duration_s"`
	DurationInTrafficS *int64 `db:"duration_in_traffic_s" json:"duration_in_traffic_s,omitempty"`
	Provider           string `db:"provider" json:"provider"`
	Confidence         string `db:"confidence" json:"confidence"`

	FinalPrice int64           `db:"final_price" json:"final_price"`
	Breakdown  *PriceBreakdown `db:"-" json:"breakdown"`

	ValidUntil    time.Time  `db:"valid_until" json:"valid_until"`
	LinkedQuoteID *uuid.UUID `db:"linked_quote_id" json:"linked_quote_id,omitempty"`
	TripLeg       *string    `db:"trip_leg" json:"trip_leg,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// IsExpired - истечение котировки как вычисляемый предикат,
// а не хранимый переход состояния
func (q *Quote) IsExpired(now time.Time) bool {
	return !now.Before(q.ValidUntil)
}

// PricingActual - фактическая цена вендора, привязанная к котировке.
// Append-only запись обратной связи.
type PricingActual struct {
	ID             int64           `db:"id" json:"id"`
	QuoteID        uuid.UUID       `db:"quote_id" json:"quote_id"`
	ActualPrice    int64           `db:"actual_price" json:"actual_price"`
	Vendor         string          `db:"vendor" json:"vendor"`
	VarianceAmount int64           `db:"variance_amount" json:"variance_amount"`
	VariancePct    decimal.Decimal `db:"variance_pct" json:"variance_pct"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// Variance сравнивает фактическую цену с котированной.
// variance_pct = 0 при нулевой котировке, иначе
// round((actual - quoted) / quoted * 100, 2).
func Variance(actualPrice, quotedPrice int64) (int64, decimal.Decimal) {
	amount := actualPrice - quotedPrice
	if quotedPrice == 0 {
		return amount, decimal.Zero
	}

	pct := decimal.NewFromInt(amount).
		Div(decimal.NewFromInt(quotedPrice)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return amount, pct
}
