package domain

import (
	"github.com/shopspring/decimal"
)

// DistanceSlab - тарифная полоса телескопического тарифа.
// MinKM включительно, MaxKM исключительно (nil = открытый хвост).
// FlatFare применяется только к первой полосе: фиксированная цена
// микро-поездки вместо по-километровой.
type DistanceSlab struct {
	ID          int64    `db:"id" json:"id"`
	City        *string  `db:"city" json:"city,omitempty"`
	ZoneID      *int64   `db:"zone_id" json:"zone_id,omitempty"`
	VehicleType string   `db:"vehicle_type" json:"vehicle_type"`
	MinKM       float64  `db:"min_km" json:"min_km"`
	MaxKM       *float64 `db:"max_km" json:"max_km,omitempty"`
	PerKMRate   int64    `db:"per_km_rate" json:"per_km_rate"`
	FlatFare    *int64   `db:"flat_fare" json:"flat_fare,omitempty"`
}

// SlabCost проходит дистанцию слева направо по упорядоченным полосам,
// начисляя ставку каждой полосы за попавшую в неё часть дистанции.
// Дробные километры каждой полосы округляются half-up до целых минорных
// единиц по-полосно (не по итогу) - выбор зафиксирован golden-тестом.
// Пустой набор полос или неположительная дистанция дают 0.
func SlabCost(slabs []DistanceSlab, distanceKM float64) int64 {
	if len(slabs) == 0 || distanceKM <= 0 {
		return 0
	}

	var total int64
	for i, slab := range slabs {
		if distanceKM <= slab.MinKM {
			break
		}

		upper := distanceKM
		if slab.MaxKM != nil && *slab.MaxKM < upper {
			upper = *slab.MaxKM
		}
		portion := upper - slab.MinKM
		if portion <= 0 {
			continue
		}

		if i == 0 && slab.FlatFare != nil {
			total += *slab.FlatFare
			continue
		}

		charge := decimal.NewFromFloat(portion).
			Mul(decimal.NewFromInt(slab.PerKMRate)).
			Round(0)
		total += charge.IntPart()
	}

	return total
}
