package utils

import (
	"math"
	"strconv"

	"github.com/delivery-pricing-service/internal/pkg/errors"
)

const (
	earthRadiusM = 6371000.0

	// coordPrecision - количество знаков после запятой при нормализации
	// координат (~11 метров). Нормализация обязана быть детерминированной:
	// от неё зависит стабильность ключей кеша маршрутов.
	coordPrecision = 4
)

// HaversineDistance вычисляет расстояние между двумя точками в метрах
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// NormalizeCoordinate валидирует и округляет координаты до фиксированной
// точности. Возвращает ErrInvalidCoordinate с исходными значениями при
// выходе за допустимые диапазоны.
func NormalizeCoordinate(lat, lng float64) (float64, float64, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || !ValidateCoordinates(lat, lng) {
		return 0, 0, errors.ErrInvalidCoordinate.WithDetails(map[string]interface{}{
			"lat": lat,
			"lng": lng,
		})
	}
	return roundCoordinate(lat), roundCoordinate(lng), nil
}

// ParseCoordinate разбирает строковое представление координаты
func ParseCoordinate(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.ErrInvalidCoordinate.WithDetails(map[string]interface{}{
			"value": s,
		})
	}
	return v, nil
}

func roundCoordinate(v float64) float64 {
	factor := math.Pow10(coordPrecision)
	return math.Round(v*factor) / factor
}
