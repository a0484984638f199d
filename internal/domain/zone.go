package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// ZoneType - тип зоны, определяет множитель по умолчанию
type ZoneType string

const (
	ZoneTypeTechCorridor        ZoneType = "tech_corridor"
	ZoneTypeBusinessCBD         ZoneType = "business_cbd"
	ZoneTypeResidentialPremium  ZoneType = "residential_premium"
	ZoneTypeResidentialStandard ZoneType = "residential_standard"
	ZoneTypeIndustrial          ZoneType = "industrial"
	ZoneTypeAirportLogistics    ZoneType = "airport_logistics"
	ZoneTypeOuterRing           ZoneType = "outer_ring"
	ZoneTypeDefault             ZoneType = "default"
)

// GeometryKind - вид геометрии зоны. Проверка принадлежности точки
// полиморфна по виду геометрии; bbox - единственный обязательный вариант,
// polygon и circle зарезервированы и добавляются без изменения вызывающих.
type GeometryKind string

const (
	GeometryBBox    GeometryKind = "bbox"
	GeometryPolygon GeometryKind = "polygon"
	GeometryCircle  GeometryKind = "circle"
)

// Zone - географическая зона с собственными ценовыми атрибутами
type Zone struct {
	ID       int64        `db:"id" json:"id"`
	City     string       `db:"city" json:"city"`
	Code     string       `db:"code" json:"code"`
	Name     string       `db:"name" json:"name"`
	Type     ZoneType     `db:"zone_type" json:"zone_type"`
	Geometry GeometryKind `db:"geometry_kind" json:"geometry_kind"`

	LatMin float64 `db:"lat_min" json:"lat_min"`
	LatMax float64 `db:"lat_max" json:"lat_max"`
	LngMin float64 `db:"lng_min" json:"lng_min"`
	LngMax float64 `db:"lng_max" json:"lng_max"`

	// Polygon и circle дескрипторы; пустые для bbox-зон
	Polygon      []Coordinate `db:"-" json:"polygon,omitempty"`
	CenterLat    float64      `db:"center_lat" json:"center_lat,omitempty"`
	CenterLng    float64      `db:"center_lng" json:"center_lng,omitempty"`
	RadiusMeters float64      `db:"radius_m" json:"radius_m,omitempty"`

	Priority int  `db:"priority" json:"priority"`
	Active   bool `db:"active" json:"active"`

	ZoneMultiplier           decimal.NullDecimal `db:"zone_multiplier" json:"zone_multiplier"`
	FuelSurchargePct         decimal.Decimal     `db:"fuel_surcharge_pct" json:"fuel_surcharge_pct"`
	IsODA                    bool                `db:"is_oda" json:"is_oda"`
	ODASurchargePct          decimal.Decimal     `db:"oda_surcharge_pct" json:"oda_surcharge_pct"`
	SpecialLocationSurcharge int64               `db:"special_location_surcharge" json:"special_location_surcharge"`
}

// defaultZoneMultipliers - множители по типу зоны, применяются когда
// zone_multiplier не задан явно
var defaultZoneMultipliers = map[ZoneType]decimal.Decimal{
	ZoneTypeTechCorridor:        decimal.NewFromFloat(1.150),
	ZoneTypeBusinessCBD:         decimal.NewFromFloat(1.200),
	ZoneTypeResidentialPremium:  decimal.NewFromFloat(1.100),
	ZoneTypeResidentialStandard: decimal.NewFromFloat(1.000),
	ZoneTypeIndustrial:          decimal.NewFromFloat(0.950),
	ZoneTypeAirportLogistics:    decimal.NewFromFloat(1.250),
	ZoneTypeOuterRing:           decimal.NewFromFloat(0.900),
	ZoneTypeDefault:             decimal.NewFromFloat(1.000),
}

// EffectiveMultiplier возвращает множитель зоны: явный, либо по типу зоны
func (z *Zone) EffectiveMultiplier() decimal.Decimal {
	if z.ZoneMultiplier.Valid {
		return z.ZoneMultiplier.Decimal
	}
	if m, ok := defaultZoneMultipliers[z.Type]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// Contains проверяет принадлежность точки геометрии зоны
func (z *Zone) Contains(lat, lng float64) bool {
	switch z.Geometry {
	case GeometryPolygon:
		return z.containsPolygon(lat, lng)
	case GeometryCircle:
		return z.containsCircle(lat, lng)
	default:
		return z.containsBBox(lat, lng)
	}
}

func (z *Zone) containsBBox(lat, lng float64) bool {
	return lat >= z.LatMin && lat <= z.LatMax &&
		lng >= z.LngMin && lng <= z.LngMax
}

// containsPolygon - ray casting по вершинам полигона
func (z *Zone) containsPolygon(lat, lng float64) bool {
	if len(z.Polygon) < 3 {
		return false
	}

	inside := false
	j := len(z.Polygon) - 1
	for i := 0; i < len(z.Polygon); i++ {
		pi, pj := z.Polygon[i], z.Polygon[j]
		if (pi.Lat > lat) != (pj.Lat > lat) &&
			lng < (pj.Lng-pi.Lng)*(lat-pi.Lat)/(pj.Lat-pi.Lat)+pi.Lng {
			inside = !inside
		}
		j = i
	}
	return inside
}

func (z *Zone) containsCircle(lat, lng float64) bool {
	if z.RadiusMeters <= 0 {
		return false
	}
	return haversineMeters(z.CenterLat, z.CenterLng, lat, lng) <= z.RadiusMeters
}

func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusM = 6371000.0

	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*
			math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// FindZone возвращает первую активную зону, содержащую точку.
// Зоны обходятся в порядке priority DESC, code ASC: при равном приоритете
// детерминированно выигрывает зона с наименьшим кодом.
func FindZone(zones []*Zone, lat, lng float64) *Zone {
	for _, z := range zones {
		if !z.Active {
			continue
		}
		if z.Contains(lat, lng) {
			return z
		}
	}
	return nil
}
