package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/domain"
	"github.com/delivery-pricing-service/internal/domain/repository"
	"github.com/delivery-pricing-service/internal/pkg/errors"
)

type pricingRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPricingRepository(db *DB) repository.PricingRepository {
	return &pricingRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

const pricingConfigColumns = `
	id, city, vehicle_type,
	base_fare, min_fare, base_distance_m, per_km_rate,
	vehicle_multiplier, city_multiplier,
	variance_buffer_pct, variance_buffer_min, variance_buffer_max,
	high_value_threshold, high_value_buffer_pct, high_value_buffer_min,
	min_margin_pct, min_margin_flat,
	timezone, quote_validity_minutes, return_trip_discount_pct,
	version, active, effective_from, effective_until, created_at
`

// GetActiveConfig возвращает действующую версию конфига: активную,
// с открытым effective-окном. nil без ошибки при отсутствии.
func (r *pricingRepository) GetActiveConfig(ctx context.Context, city, vehicleType string) (*domain.PricingConfig, error) {
	query := `
		SELECT ` + pricingConfigColumns + `
		FROM pricing_configs
		WHERE city = $1
		  AND vehicle_type = $2
		  AND active = true
		  AND effective_until IS NULL
		  AND effective_from <= NOW()
		ORDER BY version DESC
		LIMIT 1
	`

	var cfg domain.PricingConfig
	err := r.db.GetContext(ctx, &cfg, query, city, vehicleType)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get active pricing config",
			zap.String("city", city),
			zap.String("vehicle_type", vehicleType),
			zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	return &cfg, nil
}

// CreateConfigVersion атомарно закрывает текущую активную версию
// (effective_until = NOW(), active = false) и вставляет следующую.
// Между версиями не существует момента с двумя активными конфигами.
func (r *pricingRepository) CreateConfigVersion(ctx context.Context, cfg *domain.PricingConfig) (*domain.PricingConfig, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin config version tx", zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}
	defer tx.Rollback()

	var currentVersion sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT version FROM pricing_configs
		WHERE city = $1 AND vehicle_type = $2 AND active = true
		FOR UPDATE
	`, cfg.City, cfg.VehicleType).Scan(&currentVersion)
	if err != nil && !stderrors.Is(err, sql.ErrNoRows) {
		r.logger.Error("Failed to lock current config version", zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	if currentVersion.Valid {
		_, err = tx.ExecContext(ctx, `
			UPDATE pricing_configs
			SET active = false, effective_until = NOW()
			WHERE city = $1 AND vehicle_type = $2 AND active = true
		`, cfg.City, cfg.VehicleType)
		if err != nil {
			r.logger.Error("Failed to close current config version", zap.Error(err))
			return nil, errors.ErrPersistenceFailure
		}
	}

	next := *cfg
	next.Version = int(currentVersion.Int64) + 1
	next.Active = true

	query := `
		INSERT INTO pricing_configs (
			city, vehicle_type,
			base_fare, min_fare, base_distance_m, per_km_rate,
			vehicle_multiplier, city_multiplier,
			variance_buffer_pct, variance_buffer_min, variance_buffer_max,
			high_value_threshold, high_value_buffer_pct, high_value_buffer_min,
			min_margin_pct, min_margin_flat,
			timezone, quote_validity_minutes, return_trip_discount_pct,
			version, active, effective_from
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, true, NOW()
		)
		RETURNING id, effective_from, created_at
	`

	err = tx.QueryRowContext(ctx, query,
		next.City, next.VehicleType,
		next.BaseFare, next.MinFare, next.BaseDistanceM, next.PerKMRate,
		next.VehicleMultiplier, next.CityMultiplier,
		next.VarianceBufferPct, next.VarianceBufferMin, next.VarianceBufferMax,
		next.HighValueThreshold, next.HighValueBufferPct, next.HighValueBufferMin,
		next.MinMarginPct, next.MinMarginFlat,
		next.Timezone, next.QuoteValidityMinutes, next.ReturnTripDiscountPct,
		next.Version,
	).Scan(&next.ID, &next.EffectiveFrom, &next.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert config version", zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit config version", zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	r.logger.Info("Pricing config version created",
		zap.String("city", next.City),
		zap.String("vehicle_type", next.VehicleType),
		zap.Int("version", next.Version))
	return &next, nil
}

func (r *pricingRepository) ListSurgeRules(ctx context.Context, pricingConfigID int64) ([]domain.SurgeRule, error) {
	query := `
		SELECT
			id, pricing_config_id, rule_type,
			start_hour, end_hour, weekdays, traffic_threshold,
			date_from, date_to, multiplier, priority, active
		FROM surge_rules
		WHERE pricing_config_id = $1 AND active = true
		ORDER BY priority DESC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, pricingConfigID)
	if err != nil {
		r.logger.Error("Failed to list surge rules",
			zap.Int64("config_id", pricingConfigID),
			zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}
	defer rows.Close()

	var rules []domain.SurgeRule
	for rows.Next() {
		var rule domain.SurgeRule
		var weekdays pq.Int64Array

		err := rows.Scan(
			&rule.ID, &rule.PricingConfigID, &rule.RuleType,
			&rule.StartHour, &rule.EndHour, &weekdays, &rule.TrafficThreshold,
			&rule.DateFrom, &rule.DateTo, &rule.Multiplier, &rule.Priority, &rule.Active,
		)
		if err != nil {
			r.logger.Error("Failed to scan surge rule", zap.Error(err))
			return nil, errors.ErrPersistenceFailure
		}

		rule.Weekdays = []int64(weekdays)
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate surge rules", zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	return rules, nil
}

func (r *pricingRepository) ListCitySlabs(ctx context.Context, city, vehicleType string) ([]domain.DistanceSlab, error) {
	query := `
		SELECT id, city, zone_id, vehicle_type, min_km, max_km, per_km_rate, flat_fare
		FROM distance_slabs
		WHERE city = $1 AND zone_id IS NULL AND vehicle_type = $2
		ORDER BY min_km ASC
	`

	var slabs []domain.DistanceSlab
	if err := r.db.SelectContext(ctx, &slabs, query, city, vehicleType); err != nil {
		r.logger.Error("Failed to list city slabs",
			zap.String("city", city),
			zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	return slabs, nil
}

func (r *pricingRepository) ListZoneSlabs(ctx context.Context, zoneID int64, vehicleType string) ([]domain.DistanceSlab, error) {
	query := `
		SELECT id, city, zone_id, vehicle_type, min_km, max_km, per_km_rate, flat_fare
		FROM distance_slabs
		WHERE zone_id = $1 AND vehicle_type = $2
		ORDER BY min_km ASC
	`

	var slabs []domain.DistanceSlab
	if err := r.db.SelectContext(ctx, &slabs, query, zoneID, vehicleType); err != nil {
		r.logger.Error("Failed to list zone slabs",
			zap.Int64("zone_id", zoneID),
			zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	return slabs, nil
}

func (r *pricingRepository) GetZoneVehiclePricing(ctx context.Context, zoneID int64, vehicleType string) (*domain.ZoneVehiclePricing, error) {
	query := `
		SELECT id, zone_id, vehicle_type, base_fare, min_fare, base_distance_m, per_km_rate
		FROM zone_vehicle_pricing
		WHERE zone_id = $1 AND vehicle_type = $2
	`

	var zvp domain.ZoneVehiclePricing
	err := r.db.GetContext(ctx, &zvp, query, zoneID, vehicleType)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get zone vehicle pricing",
			zap.Int64("zone_id", zoneID),
			zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	timeQuery := `
		SELECT id, zone_vehicle_pricing_id, time_band, base_fare, min_fare, per_km_rate
		FROM zone_vehicle_time_pricing
		WHERE zone_vehicle_pricing_id = $1
	`
	if err := r.db.SelectContext(ctx, &zvp.TimePricing, timeQuery, zvp.ID); err != nil {
		r.logger.Error("Failed to list zone time pricing",
			zap.Int64("zone_vehicle_pricing_id", zvp.ID),
			zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	return &zvp, nil
}

// ListZonePairPricing выбирает активные коридорные записи для обоих
// направлений пары; порядок предпочтения применяет доменный матчер
func (r *pricingRepository) ListZonePairPricing(ctx context.Context, city, fromZoneCode, toZoneCode, vehicleType string) ([]domain.ZonePairVehiclePricing, error) {
	query := `
		SELECT id, city, from_zone_code, to_zone_code, vehicle_type,
		       time_band, base_fare, min_fare, per_km_rate, directional, active
		FROM zone_pair_vehicle_pricing
		WHERE city = $1
		  AND vehicle_type = $2
		  AND active = true
		  AND (
		      (from_zone_code = $3 AND to_zone_code = $4)
		      OR (from_zone_code = $4 AND to_zone_code = $3)
		  )
		ORDER BY id ASC
	`

	var pairs []domain.ZonePairVehiclePricing
	if err := r.db.SelectContext(ctx, &pairs, query, city, vehicleType, fromZoneCode, toZoneCode); err != nil {
		r.logger.Error("Failed to list zone pair pricing",
			zap.String("from", fromZoneCode),
			zap.String("to", toZoneCode),
			zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	return pairs, nil
}
