package postgres_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/delivery-pricing-service/internal/domain"
	"github.com/delivery-pricing-service/internal/domain/repository"
	"github.com/delivery-pricing-service/internal/repository/postgres/testhelpers"
)

// PricingRepositoryTestSuite tests all methods of PricingRepository
type PricingRepositoryTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDB
	repo   repository.PricingRepository
	ctx    context.Context
}

func (s *PricingRepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())

	err := s.testDB.Cleanup(context.Background())
	s.NoError(err, "Failed to cleanup test database")

	s.repo = testhelpers.NewPricingRepositoryForTest(s.testDB.DB, s.testDB.Logger)
}

func (s *PricingRepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Cleanup(context.Background())
		s.testDB.Close()
	}
}

func (s *PricingRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()

	for _, table := range []string{"surge_rules", "distance_slabs", "zone_pair_vehicle_pricing", "pricing_configs", "zones"} {
		_, err := s.testDB.DB.Exec("TRUNCATE TABLE " + table + " CASCADE")
		s.NoError(err)
	}
}

func (s *PricingRepositoryTestSuite) insertConfig(city, vehicleType string, version int, active bool) int64 {
	var id int64
	err := s.testDB.DB.QueryRow(`
		INSERT INTO pricing_configs (
			city, vehicle_type, base_fare, min_fare, base_distance_m, per_km_rate,
			version, active, effective_from
		) VALUES ($1, $2, 3000, 5000, 2000, 900, $3, $4, NOW() - INTERVAL '1 hour')
		RETURNING id
	`, city, vehicleType, version, active).Scan(&id)
	s.NoError(err)
	return id
}

// ============================================================================
// GetActiveConfig Tests
// ============================================================================

func (s *PricingRepositoryTestSuite) TestGetActiveConfig_Success() {
	s.insertConfig("bangalore", "two_wheeler", 1, true)

	cfg, err := s.repo.GetActiveConfig(s.ctx, "bangalore", "two_wheeler")

	s.NoError(err)
	s.Require().NotNil(cfg)
	s.Equal("bangalore", cfg.City)
	s.Equal(int64(3000), cfg.BaseFare)
	s.Equal(int64(5000), cfg.MinFare)
	s.Equal(1, cfg.Version)
	s.True(cfg.Active)
}

func (s *PricingRepositoryTestSuite) TestGetActiveConfig_NotFoundReturnsNil() {
	cfg, err := s.repo.GetActiveConfig(s.ctx, "bangalore", "truck_17ft")

	s.NoError(err)
	s.Nil(cfg)
}

func (s *PricingRepositoryTestSuite) TestGetActiveConfig_IgnoresInactiveVersions() {
	s.insertConfig("bangalore", "two_wheeler", 1, false)

	cfg, err := s.repo.GetActiveConfig(s.ctx, "bangalore", "two_wheeler")

	s.NoError(err)
	s.Nil(cfg)
}

// ============================================================================
// CreateConfigVersion Tests
// ============================================================================

func (s *PricingRepositoryTestSuite) TestCreateConfigVersion_FirstVersion() {
	cfg := &domain.PricingConfig{
		City:              "bangalore",
		VehicleType:       "two_wheeler",
		BaseFare:          3000,
		MinFare:           5000,
		BaseDistanceM:     2000,
		PerKMRate:         900,
		VehicleMultiplier: decimal.NewFromInt(1),
		CityMultiplier:    decimal.NewFromInt(1),
		Timezone:          "Asia/Kolkata",
	}

	created, err := s.repo.CreateConfigVersion(s.ctx, cfg)

	s.NoError(err)
	s.Require().NotNil(created)
	s.Equal(1, created.Version)
	s.True(created.Active)
	s.NotZero(created.ID)
}

func (s *PricingRepositoryTestSuite) TestCreateConfigVersion_ClosesPreviousVersion() {
	s.insertConfig("bangalore", "two_wheeler", 1, true)

	cfg := &domain.PricingConfig{
		City:              "bangalore",
		VehicleType:       "two_wheeler",
		BaseFare:          3500,
		MinFare:           5500,
		BaseDistanceM:     2000,
		PerKMRate:         950,
		VehicleMultiplier: decimal.NewFromInt(1),
		CityMultiplier:    decimal.NewFromInt(1),
		Timezone:          "Asia/Kolkata",
	}

	created, err := s.repo.CreateConfigVersion(s.ctx, cfg)

	s.NoError(err)
	s.Require().NotNil(created)
	s.Equal(2, created.Version)

	// Старая версия закрыта, активна ровно одна
	var activeCount int
	err = s.testDB.DB.Get(&activeCount, `
		SELECT COUNT(*) FROM pricing_configs
		WHERE city = 'bangalore' AND vehicle_type = 'two_wheeler' AND active = true
	`)
	s.NoError(err)
	s.Equal(1, activeCount)

	active, err := s.repo.GetActiveConfig(s.ctx, "bangalore", "two_wheeler")
	s.NoError(err)
	s.Require().NotNil(active)
	s.Equal(int64(3500), active.BaseFare)
	s.Equal(2, active.Version)
}

// ============================================================================
// ListSurgeRules Tests
// ============================================================================

func (s *PricingRepositoryTestSuite) TestListSurgeRules_OrdersByPriority() {
	configID := s.insertConfig("bangalore", "two_wheeler", 1, true)

	_, err := s.testDB.DB.Exec(`
		INSERT INTO surge_rules (pricing_config_id, rule_type, start_hour, end_hour, weekdays, multiplier, priority, active)
		VALUES
			($1, 'time_window', 18, 21, '{1,2,3,4,5}', 1.25, 10, true),
			($1, 'time_window', 8, 11, NULL, 1.10, 20, true),
			($1, 'time_window', 0, 24, NULL, 1.50, 5, false)
	`, configID)
	s.NoError(err)

	rules, err := s.repo.ListSurgeRules(s.ctx, configID)

	s.NoError(err)
	s.Require().Len(rules, 2)
	s.Equal(20, rules[0].Priority)
	s.Equal(10, rules[1].Priority)
	s.Equal([]int64{1, 2, 3, 4, 5}, rules[1].Weekdays)
	s.True(rules[0].Multiplier.Equal(decimal.NewFromFloat(1.10)))
}

// ============================================================================
// Distance Slab Tests
// ============================================================================

func (s *PricingRepositoryTestSuite) TestListCitySlabs_OnlyCityLevel() {
	var zoneID int64
	err := s.testDB.DB.QueryRow(`
		INSERT INTO zones (city, code, name, zone_type, geometry_kind, priority, active)
		VALUES ('bangalore', 'WHI', 'Whitefield', 'tech_corridor', 'bbox', 10, true)
		RETURNING id
	`).Scan(&zoneID)
	s.NoError(err)

	_, err = s.testDB.DB.Exec(`
		INSERT INTO distance_slabs (city, zone_id, vehicle_type, min_km, max_km, per_km_rate)
		VALUES
			('bangalore', NULL, 'two_wheeler', 0, 2.5, 333),
			('bangalore', NULL, 'two_wheeler', 2.5, NULL, 777),
			(NULL, $1, 'two_wheeler', 0, NULL, 900)
	`, zoneID)
	s.NoError(err)

	slabs, err := s.repo.ListCitySlabs(s.ctx, "bangalore", "two_wheeler")

	s.NoError(err)
	s.Require().Len(slabs, 2)
	// Отсортированы по min_km
	s.Equal(0.0, slabs[0].MinKM)
	s.Equal(2.5, slabs[1].MinKM)
	s.Nil(slabs[1].MaxKM)

	zoneSlabs, err := s.repo.ListZoneSlabs(s.ctx, zoneID, "two_wheeler")
	s.NoError(err)
	s.Require().Len(zoneSlabs, 1)
	s.Equal(int64(900), zoneSlabs[0].PerKMRate)
}

// ============================================================================
// Zone Vehicle Pricing Tests
// ============================================================================

func (s *PricingRepositoryTestSuite) TestGetZoneVehiclePricing_WithTimeBands() {
	var zoneID int64
	err := s.testDB.DB.QueryRow(`
		INSERT INTO zones (city, code, name, zone_type, geometry_kind, priority, active)
		VALUES ('bangalore', 'WHI', 'Whitefield', 'tech_corridor', 'bbox', 10, true)
		RETURNING id
	`).Scan(&zoneID)
	s.NoError(err)

	var zvpID int64
	err = s.testDB.DB.QueryRow(`
		INSERT INTO zone_vehicle_pricing (zone_id, vehicle_type, base_fare, min_fare, base_distance_m, per_km_rate)
		VALUES ($1, 'two_wheeler', 3500, 5000, 2000, 900)
		RETURNING id
	`, zoneID).Scan(&zvpID)
	s.NoError(err)

	_, err = s.testDB.DB.Exec(`
		INSERT INTO zone_vehicle_time_pricing (zone_vehicle_pricing_id, time_band, base_fare, min_fare, per_km_rate)
		VALUES ($1, 'morning', 4000, 5000, 850)
	`, zvpID)
	s.NoError(err)

	zvp, err := s.repo.GetZoneVehiclePricing(s.ctx, zoneID, "two_wheeler")

	s.NoError(err)
	s.Require().NotNil(zvp)
	s.Equal(int64(3500), zvp.BaseFare)
	s.Require().Len(zvp.TimePricing, 1)
	s.Equal(domain.TimeBandMorning, zvp.TimePricing[0].TimeBand)
	s.Equal(int64(4000), zvp.TimePricing[0].BaseFare)

	missing, err := s.repo.GetZoneVehiclePricing(s.ctx, zoneID, "truck_17ft")
	s.NoError(err)
	s.Nil(missing)
}

// ============================================================================
// Zone Pair Pricing Tests
// ============================================================================

func (s *PricingRepositoryTestSuite) TestListZonePairPricing_BothDirections() {
	_, err := s.testDB.DB.Exec(`
		INSERT INTO zone_pair_vehicle_pricing
			(city, from_zone_code, to_zone_code, vehicle_type, time_band, base_fare, min_fare, per_km_rate, directional, active)
		VALUES
			('bangalore', 'WHI', 'CBD', 'two_wheeler', NULL, 25000, 25000, 2800, false, true),
			('bangalore', 'CBD', 'WHI', 'two_wheeler', 'morning', 27000, 27000, 2900, true, true),
			('bangalore', 'WHI', 'KOR', 'two_wheeler', NULL, 20000, 20000, 2500, false, true),
			('bangalore', 'WHI', 'CBD', 'two_wheeler', NULL, 30000, 30000, 3000, false, false)
	`)
	s.NoError(err)

	pairs, err := s.repo.ListZonePairPricing(s.ctx, "bangalore", "WHI", "CBD", "two_wheeler")

	s.NoError(err)
	// Обе ориентации пары, неактивные записи отброшены
	s.Require().Len(pairs, 2)

	match := domain.MatchZonePair(pairs, "WHI", "CBD", domain.TimeBandAfternoon)
	s.Require().NotNil(match)
	s.Equal(int64(25000), match.BaseFare)
}

func TestPricingRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(PricingRepositoryTestSuite))
}
