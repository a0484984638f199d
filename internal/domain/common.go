package domain

import "time"

// Coordinate - нормализованная географическая точка
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TimeBand - временной диапазон для зонных тарифов и surge-таблицы
type TimeBand string

const (
	TimeBandMorning   TimeBand = "morning"   // [6, 12)
	TimeBandAfternoon TimeBand = "afternoon" // [12, 18)
	TimeBandEvening   TimeBand = "evening"   // [18, 24) и [0, 6)
)

// TimeBandFor классифицирует локальное время по часу.
// Ночные часы попадают в evening (ветка по умолчанию).
func TimeBandFor(t time.Time) TimeBand {
	hour := t.Hour()
	switch {
	case hour >= 6 && hour < 12:
		return TimeBandMorning
	case hour >= 12 && hour < 18:
		return TimeBandAfternoon
	default:
		return TimeBandEvening
	}
}

// Источники тарифной карты в порядке приоритета
const (
	RateSourceCorridor     = "corridor"
	RateSourceZoneTimeBand = "zone_time_band"
	RateSourceZoneBase     = "zone_base"
	RateSourceCityDefault  = "city_default"
)

// Trip leg для связанных котировок туда-обратно
const (
	TripLegOutbound = "outbound"
	TripLegReturn   = "return"
)

// Confidence котировки: high при ответе основного провайдера,
// estimated при геометрическом fallback
const (
	ConfidenceHigh      = "high"
	ConfidenceEstimated = "estimated"
)

// Имена провайдеров маршрута
const (
	ProviderGoogleMaps        = "google_maps"
	ProviderHaversineFallback = "haversine_fallback"
)
