package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DistanceBand - дистанционный диапазон поездки для масштабирования surge
type DistanceBand string

const (
	DistanceBandMicro  DistanceBand = "micro"  // [0, 5)
	DistanceBandShort  DistanceBand = "short"  // [5, 12)
	DistanceBandMedium DistanceBand = "medium" // [12, 20)
	DistanceBandLong   DistanceBand = "long"   // [20, +inf)
)

// VehicleCategory - грузовая категория для surge-таблицы
type VehicleCategory string

const (
	VehicleCategorySmall VehicleCategory = "small"
	VehicleCategoryMid   VehicleCategory = "mid"
	VehicleCategoryHeavy VehicleCategory = "heavy"
)

// Граница санити-фильтра traffic ratio: значения вне [0.8, 3.0]
// считаются шумом модели, а не реальным сигналом пробок
const (
	trafficRatioMin = 0.8
	trafficRatioMax = 3.0
)

// SurgeMultiplierCap - жёсткий потолок эффективного множителя,
// страховка от ошибок конфигурации
const SurgeMultiplierCap = 2.0

// Классификационные таблицы фиксированные и версионируемые вместе с кодом.
// Неизвестный тип машины относится к mid.
var vehicleCategories = map[string]VehicleCategory{
	"two_wheeler":   VehicleCategorySmall,
	"scooter":       VehicleCategorySmall,
	"three_wheeler": VehicleCategoryMid,
	"tata_ace":      VehicleCategoryMid,
	"pickup_8ft":    VehicleCategoryMid,
	"canter_14ft":   VehicleCategoryHeavy,
	"truck_17ft":    VehicleCategoryHeavy,
	"truck_22ft":    VehicleCategoryHeavy,
}

// Базовые множители (категория x временной диапазон)
var baseTimeMultipliers = map[VehicleCategory]map[TimeBand]float64{
	VehicleCategorySmall: {
		TimeBandMorning:   0.98,
		TimeBandAfternoon: 1.02,
		TimeBandEvening:   1.00,
	},
	VehicleCategoryMid: {
		TimeBandMorning:   0.98,
		TimeBandAfternoon: 1.05,
		TimeBandEvening:   1.15,
	},
	VehicleCategoryHeavy: {
		TimeBandMorning:   1.00,
		TimeBandAfternoon: 1.05,
		TimeBandEvening:   1.10,
	},
}

// Масштаб отклонения множителя от 1.0 по дистанционному диапазону:
// короткие поездки чувствительнее к времени суток
var distanceBandScales = map[DistanceBand]float64{
	DistanceBandMicro:  1.5,
	DistanceBandShort:  1.0,
	DistanceBandMedium: 0.8,
	DistanceBandLong:   0.7,
}

// DistanceBandFor классифицирует дистанцию поездки в километрах
func DistanceBandFor(distanceKM float64) DistanceBand {
	switch {
	case distanceKM < 5:
		return DistanceBandMicro
	case distanceKM < 12:
		return DistanceBandShort
	case distanceKM < 20:
		return DistanceBandMedium
	default:
		return DistanceBandLong
	}
}

// VehicleCategoryFor возвращает категорию машины, mid по умолчанию
func VehicleCategoryFor(vehicleType string) VehicleCategory {
	if cat, ok := vehicleCategories[vehicleType]; ok {
		return cat
	}
	return VehicleCategoryMid
}

// SurgeMultiplier вычисляет динамический множитель из временного
// диапазона, дистанционного диапазона и категории машины:
// effective = 1 + (base - 1) * scale.
// Возвращает нейтральный 1.0, если дистанция или тип машины недоступны.
func SurgeMultiplier(vehicleType string, localTime time.Time, distanceKM float64) float64 {
	if vehicleType == "" || distanceKM <= 0 {
		return 1.0
	}

	category := VehicleCategoryFor(vehicleType)
	base := baseTimeMultipliers[category][TimeBandFor(localTime)]
	scale := distanceBandScales[DistanceBandFor(distanceKM)]

	return 1.0 + (base-1.0)*scale
}

// TrafficRatio вычисляет отношение времени в пробках к свободному времени.
// Значения вне [0.8, 3.0] отбрасываются как шум (ok=false).
// Сейчас ratio никуда не подмешивается - слот зарезервирован под будущее
// взвешивание и попадает только в breakdown.
func TrafficRatio(durationS int64, durationInTrafficS *int64) (float64, bool) {
	if durationInTrafficS == nil || durationS <= 0 {
		return 0, false
	}

	ratio := float64(*durationInTrafficS) / float64(durationS)
	if ratio < trafficRatioMin || ratio > trafficRatioMax {
		return 0, false
	}
	return ratio, true
}

// SurgeRuleType - тип условия структурированного surge-правила
type SurgeRuleType string

const (
	SurgeRuleTimeOfDay    SurgeRuleType = "time_of_day"
	SurgeRuleWeekday      SurgeRuleType = "weekday"
	SurgeRuleTrafficRatio SurgeRuleType = "traffic_ratio"
	SurgeRuleDateRange    SurgeRuleType = "date_range"
)

// SurgeRule - админское surge-правило, привязанное к pricing config.
// Правила моделируют точечные переопределения поверх статической таблицы:
// подходящее правило с наибольшим приоритетом заменяет табличный множитель.
type SurgeRule struct {
	ID               int64           `db:"id" json:"id"`
	PricingConfigID  int64           `db:"pricing_config_id" json:"pricing_config_id"`
	RuleType         SurgeRuleType   `db:"rule_type" json:"rule_type"`
	StartHour        *int            `db:"start_hour" json:"start_hour,omitempty"`
	EndHour          *int            `db:"end_hour" json:"end_hour,omitempty"`
	Weekdays         []int64         `db:"-" json:"weekdays,omitempty"`
	TrafficThreshold *float64        `db:"traffic_threshold" json:"traffic_threshold,omitempty"`
	DateFrom         *time.Time      `db:"date_from" json:"date_from,omitempty"`
	DateTo           *time.Time      `db:"date_to" json:"date_to,omitempty"`
	Multiplier       decimal.Decimal `db:"multiplier" json:"multiplier"`
	Priority         int             `db:"priority" json:"priority"`
	Active           bool            `db:"active" json:"active"`
}

// Matches проверяет, применимо ли правило к моменту котировки
func (r *SurgeRule) Matches(localTime time.Time, trafficRatio *float64) bool {
	if !r.Active {
		return false
	}

	switch r.RuleType {
	case SurgeRuleTimeOfDay:
		if r.StartHour == nil || r.EndHour == nil {
			return false
		}
		hour := localTime.Hour()
		if !hourInWindow(hour, *r.StartHour, *r.EndHour) {
			return false
		}
		return len(r.Weekdays) == 0 || r.matchesWeekday(localTime)

	case SurgeRuleWeekday:
		return r.matchesWeekday(localTime)

	case SurgeRuleTrafficRatio:
		if r.TrafficThreshold == nil || trafficRatio == nil {
			return false
		}
		return *trafficRatio >= *r.TrafficThreshold

	case SurgeRuleDateRange:
		if r.DateFrom == nil || r.DateTo == nil {
			return false
		}
		return !localTime.Before(*r.DateFrom) && !localTime.After(*r.DateTo)
	}

	return false
}

func (r *SurgeRule) matchesWeekday(localTime time.Time) bool {
	wd := int64(localTime.Weekday())
	for _, d := range r.Weekdays {
		if d == wd {
			return true
		}
	}
	return false
}

// hourInWindow поддерживает окна через полночь (22 -> 4)
func hourInWindow(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

// ResolveSurgeRule выбирает применимое активное правило с наибольшим
// приоритетом; nil, если ни одно не подходит
func ResolveSurgeRule(rules []SurgeRule, localTime time.Time, trafficRatio *float64) *SurgeRule {
	var best *SurgeRule
	for i := range rules {
		rule := &rules[i]
		if !rule.Matches(localTime, trafficRatio) {
			continue
		}
		if best == nil || rule.Priority > best.Priority {
			best = rule
		}
	}
	return best
}
