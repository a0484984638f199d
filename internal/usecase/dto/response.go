package dto

import (
	"time"

	"github.com/delivery-pricing-service/internal/domain"
	"github.com/google/uuid"
)

// QuoteResponse - котировка в ответе API
type QuoteResponse struct {
	QuoteID       uuid.UUID              `json:"quote_id"`
	City          string                 `json:"city"`
	VehicleType   string                 `json:"vehicle_type"`
	Pickup        PointInput             `json:"pickup"`
	Drop          PointInput             `json:"drop"`
	DistanceM     int64                  `json:"distance_m"`
	DurationS     int64                  `json:"duration_s"`
	RouteProvider string                 `json:"route_provider"`
	Confidence    string                 `json:"confidence"`
	RateSource    string                 `json:"rate_source"`
	FinalPrice    int64                  `json:"final_price"`
	Breakdown     *domain.PriceBreakdown `json:"breakdown,omitempty"`
	ValidUntil    time.Time              `json:"valid_until"`
	Expired       bool                   `json:"expired"`
	CreatedAt     time.Time              `json:"created_at"`
	LinkedQuoteID *uuid.UUID             `json:"linked_quote_id,omitempty"`
	TripLeg       *string                `json:"trip_leg,omitempty"`
}

// VehicleQuoteError - ошибка расчёта по конкретному типу машины
// в мульти-котировке
type VehicleQuoteError struct {
	VehicleType string `json:"vehicle_type"`
	Code        string `json:"code"`
	Message     string `json:"message"`
}

// MultiQuoteResponse - набор котировок по одному маршруту
type MultiQuoteResponse struct {
	City      string              `json:"city"`
	DistanceM int64               `json:"distance_m"`
	DurationS int64               `json:"duration_s"`
	Quotes    []QuoteResponse     `json:"quotes"`
	Errors    []VehicleQuoteError `json:"errors,omitempty"`
}

// RoundTripResponse - пара связанных котировок туда-обратно
type RoundTripResponse struct {
	Outbound       QuoteResponse `json:"outbound"`
	Return         QuoteResponse `json:"return"`
	CombinedPrice  int64         `json:"combined_price"`
	DiscountAmount int64         `json:"discount_amount"`
	TotalPrice     int64         `json:"total_price"`
}

// ActualPriceResponse - результат фиксации фактической цены
type ActualPriceResponse struct {
	QuoteID     uuid.UUID `json:"quote_id"`
	QuotedPrice int64     `json:"quoted_price"`
	ActualPrice int64     `json:"actual_price"`
	VarianceAbs int64     `json:"variance_abs"`
	VariancePct string    `json:"variance_pct"`
	Vendor      string    `json:"vendor,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// FromQuote собирает QuoteResponse из доменной котировки
func FromQuote(q *domain.Quote) QuoteResponse {
	resp := QuoteResponse{
		QuoteID:       q.ID,
		City:          q.City,
		VehicleType:   q.VehicleType,
		Pickup:        PointInput{Lat: q.PickupLat, Lng: q.PickupLng},
		Drop:          PointInput{Lat: q.DropLat, Lng: q.DropLng},
		DistanceM:     q.DistanceM,
		DurationS:     q.DurationS,
		RouteProvider: q.Provider,
		Confidence:    q.Confidence,
		FinalPrice:    q.FinalPrice,
		Breakdown:     q.Breakdown,
		ValidUntil:    q.ValidUntil,
		CreatedAt:     q.CreatedAt,
		LinkedQuoteID: q.LinkedQuoteID,
		TripLeg:       q.TripLeg,
	}
	if q.Breakdown != nil {
		resp.RateSource = q.Breakdown.RateSource
	}
	return resp
}
