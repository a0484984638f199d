package testhelpers

import (
	"database/sql"
	"fmt"
)

// schemaStatements создают таблицы тестовой базы. Идемпотентны:
// повторный прогон не ломает уже подготовленную базу.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS zones (
		id BIGSERIAL PRIMARY KEY,
		city TEXT NOT NULL,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		zone_type TEXT NOT NULL,
		geometry_kind TEXT NOT NULL,
		lat_min DOUBLE PRECISION NOT NULL DEFAULT 0,
		lat_max DOUBLE PRECISION NOT NULL DEFAULT 0,
		lng_min DOUBLE PRECISION NOT NULL DEFAULT 0,
		lng_max DOUBLE PRECISION NOT NULL DEFAULT 0,
		polygon JSONB,
		center_lat DOUBLE PRECISION NOT NULL DEFAULT 0,
		center_lng DOUBLE PRECISION NOT NULL DEFAULT 0,
		radius_m DOUBLE PRECISION NOT NULL DEFAULT 0,
		priority INT NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT true,
		zone_multiplier NUMERIC(8,3),
		fuel_surcharge_pct NUMERIC(8,3) NOT NULL DEFAULT 0,
		is_oda BOOLEAN NOT NULL DEFAULT false,
		oda_surcharge_pct NUMERIC(8,3) NOT NULL DEFAULT 0,
		special_location_surcharge BIGINT NOT NULL DEFAULT 0,
		UNIQUE (city, code)
	)`,

	`CREATE TABLE IF NOT EXISTS pricing_configs (
		id BIGSERIAL PRIMARY KEY,
		city TEXT NOT NULL,
		vehicle_type TEXT NOT NULL,
		base_fare BIGINT NOT NULL,
		min_fare BIGINT NOT NULL,
		base_distance_m BIGINT NOT NULL DEFAULT 0,
		per_km_rate BIGINT NOT NULL DEFAULT 0,
		vehicle_multiplier NUMERIC(8,3) NOT NULL DEFAULT 1,
		city_multiplier NUMERIC(8,3) NOT NULL DEFAULT 1,
		variance_buffer_pct NUMERIC(8,3) NOT NULL DEFAULT 0,
		variance_buffer_min BIGINT NOT NULL DEFAULT 0,
		variance_buffer_max BIGINT NOT NULL DEFAULT 0,
		high_value_threshold BIGINT NOT NULL DEFAULT 0,
		high_value_buffer_pct NUMERIC(8,3) NOT NULL DEFAULT 0,
		high_value_buffer_min BIGINT NOT NULL DEFAULT 0,
		min_margin_pct NUMERIC(8,3) NOT NULL DEFAULT 0,
		min_margin_flat BIGINT NOT NULL DEFAULT 0,
		timezone TEXT NOT NULL DEFAULT 'Asia/Kolkata',
		quote_validity_minutes INT NOT NULL DEFAULT 10,
		return_trip_discount_pct NUMERIC(8,3) NOT NULL DEFAULT 10,
		version INT NOT NULL DEFAULT 1,
		active BOOLEAN NOT NULL DEFAULT true,
		effective_from TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		effective_until TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS surge_rules (
		id BIGSERIAL PRIMARY KEY,
		pricing_config_id BIGINT NOT NULL REFERENCES pricing_configs(id) ON DELETE CASCADE,
		rule_type TEXT NOT NULL,
		start_hour INT,
		end_hour INT,
		weekdays BIGINT[],
		traffic_threshold DOUBLE PRECISION,
		date_from TIMESTAMPTZ,
		date_to TIMESTAMPTZ,
		multiplier NUMERIC(8,3) NOT NULL,
		priority INT NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT true
	)`,

	`CREATE TABLE IF NOT EXISTS distance_slabs (
		id BIGSERIAL PRIMARY KEY,
		city TEXT,
		zone_id BIGINT REFERENCES zones(id) ON DELETE CASCADE,
		vehicle_type TEXT NOT NULL,
		min_km DOUBLE PRECISION NOT NULL,
		max_km DOUBLE PRECISION,
		per_km_rate BIGINT NOT NULL DEFAULT 0,
		flat_fare BIGINT
	)`,

	`CREATE TABLE IF NOT EXISTS zone_vehicle_pricing (
		id BIGSERIAL PRIMARY KEY,
		zone_id BIGINT NOT NULL REFERENCES zones(id) ON DELETE CASCADE,
		vehicle_type TEXT NOT NULL,
		base_fare BIGINT NOT NULL,
		min_fare BIGINT NOT NULL,
		base_distance_m BIGINT NOT NULL DEFAULT 0,
		per_km_rate BIGINT NOT NULL DEFAULT 0,
		UNIQUE (zone_id, vehicle_type)
	)`,

	`CREATE TABLE IF NOT EXISTS zone_vehicle_time_pricing (
		id BIGSERIAL PRIMARY KEY,
		zone_vehicle_pricing_id BIGINT NOT NULL REFERENCES zone_vehicle_pricing(id) ON DELETE CASCADE,
		time_band TEXT NOT NULL,
		base_fare BIGINT NOT NULL,
		min_fare BIGINT NOT NULL,
		per_km_rate BIGINT NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS zone_pair_vehicle_pricing (
		id BIGSERIAL PRIMARY KEY,
		city TEXT NOT NULL,
		from_zone_code TEXT NOT NULL,
		to_zone_code TEXT NOT NULL,
		vehicle_type TEXT NOT NULL,
		time_band TEXT,
		base_fare BIGINT NOT NULL,
		min_fare BIGINT NOT NULL,
		per_km_rate BIGINT NOT NULL DEFAULT 0,
		directional BOOLEAN NOT NULL DEFAULT false,
		active BOOLEAN NOT NULL DEFAULT true
	)`,

	`CREATE TABLE IF NOT EXISTS quotes (
		id UUID PRIMARY KEY,
		city TEXT NOT NULL,
		vehicle_type TEXT NOT NULL,
		pickup_lat_raw DOUBLE PRECISION NOT NULL,
		pickup_lng_raw DOUBLE PRECISION NOT NULL,
		drop_lat_raw DOUBLE PRECISION NOT NULL,
		drop_lng_raw DOUBLE PRECISION NOT NULL,
		pickup_lat DOUBLE PRECISION NOT NULL,
		pickup_lng DOUBLE PRECISION NOT NULL,
		drop_lat DOUBLE PRECISION NOT NULL,
		drop_lng DOUBLE PRECISION NOT NULL,
		distance_m BIGINT NOT NULL,
		duration_s BIGINT NOT NULL,
		duration_in_traffic_s BIGINT,
		provider TEXT NOT NULL,
		confidence TEXT NOT NULL,
		final_price BIGINT NOT NULL,
		breakdown JSONB,
		valid_until TIMESTAMPTZ NOT NULL,
		linked_quote_id UUID,
		trip_leg TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS pricing_actuals (
		id BIGSERIAL PRIMARY KEY,
		quote_id UUID NOT NULL REFERENCES quotes(id) ON DELETE CASCADE,
		actual_price BIGINT NOT NULL,
		vendor TEXT NOT NULL DEFAULT '',
		variance_amount BIGINT NOT NULL,
		variance_pct NUMERIC(10,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// ApplySchema applies all schema statements to the test database
func ApplySchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
