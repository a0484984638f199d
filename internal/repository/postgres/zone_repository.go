package postgres

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/domain"
	"github.com/delivery-pricing-service/internal/domain/repository"
	"github.com/delivery-pricing-service/internal/pkg/errors"
)

type zoneRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewZoneRepository(db *DB) repository.ZoneRepository {
	return &zoneRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// ListActiveByCity возвращает активные зоны города в порядке обхода
// индекса: priority DESC, code ASC. Детерминированный tie-break
// зашит в запрос, а не в память.
func (r *zoneRepository) ListActiveByCity(ctx context.Context, city string) ([]*domain.Zone, error) {
	query := `
		SELECT
			id, city, code, name, zone_type, geometry_kind,
			lat_min, lat_max, lng_min, lng_max,
			polygon, center_lat, center_lng, radius_m,
			priority, active,
			zone_multiplier, fuel_surcharge_pct, is_oda, oda_surcharge_pct,
			special_location_surcharge
		FROM zones
		WHERE city = $1 AND active = true
		ORDER BY priority DESC, code ASC
	`

	rows, err := r.db.QueryContext(ctx, query, city)
	if err != nil {
		r.logger.Error("Failed to list zones", zap.String("city", city), zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}
	defer rows.Close()

	var zones []*domain.Zone
	for rows.Next() {
		var z domain.Zone
		var polygonJSON []byte

		err := rows.Scan(
			&z.ID, &z.City, &z.Code, &z.Name, &z.Type, &z.Geometry,
			&z.LatMin, &z.LatMax, &z.LngMin, &z.LngMax,
			&polygonJSON, &z.CenterLat, &z.CenterLng, &z.RadiusMeters,
			&z.Priority, &z.Active,
			&z.ZoneMultiplier, &z.FuelSurchargePct, &z.IsODA, &z.ODASurchargePct,
			&z.SpecialLocationSurcharge,
		)
		if err != nil {
			r.logger.Error("Failed to scan zone", zap.Error(err))
			return nil, errors.ErrPersistenceFailure
		}

		if len(polygonJSON) > 0 {
			if err := json.Unmarshal(polygonJSON, &z.Polygon); err != nil {
				r.logger.Warn("Failed to unmarshal zone polygon",
					zap.Int64("zone_id", z.ID),
					zap.Error(err))
			}
		}

		zones = append(zones, &z)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate zones", zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	return zones, nil
}
