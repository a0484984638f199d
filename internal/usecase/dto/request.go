package dto

import "time"

// PointInput - сырые координаты точки из запроса
type PointInput struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// QuoteRequest - запрос одиночной котировки
type QuoteRequest struct {
	City        string     `json:"city" validate:"required"`
	VehicleType string     `json:"vehicle_type" validate:"required"`
	Pickup      PointInput `json:"pickup"`
	Drop        PointInput `json:"drop"`
	ItemValue   *int64     `json:"item_value,omitempty" validate:"omitempty,gt=0"`
	QuoteTime   *time.Time `json:"quote_time,omitempty"`
}

// MultiQuoteRequest - запрос котировок на несколько типов машин
// с одним разрешением маршрута
type MultiQuoteRequest struct {
	City         string     `json:"city" validate:"required"`
	VehicleTypes []string   `json:"vehicle_types" validate:"required,min=1,dive,required"`
	Pickup       PointInput `json:"pickup"`
	Drop         PointInput `json:"drop"`
	ItemValue    *int64     `json:"item_value,omitempty" validate:"omitempty,gt=0"`
	QuoteTime    *time.Time `json:"quote_time,omitempty"`
}

// RoundTripRequest - запрос котировки туда-обратно
type RoundTripRequest struct {
	City        string     `json:"city" validate:"required"`
	VehicleType string     `json:"vehicle_type" validate:"required"`
	Pickup      PointInput `json:"pickup"`
	Drop        PointInput `json:"drop"`
	ItemValue   *int64     `json:"item_value,omitempty" validate:"omitempty,gt=0"`
	QuoteTime   *time.Time `json:"quote_time,omitempty"`
	ReturnTime  *time.Time `json:"return_time,omitempty"`
}

// ActualPriceRequest - фактическая цена вендора для котировки
type ActualPriceRequest struct {
	ActualPrice int64  `json:"actual_price" validate:"required,gt=0"`
	Vendor      string `json:"vendor,omitempty"`
}
