package usecase_test

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/delivery-pricing-service/internal/domain"
)

// assertableDBError имитирует низкоуровневый сбой хранилища
var assertableDBError = stderrors.New("connection reset by peer")

// MockZoneRepository is a mock of ZoneRepository
type MockZoneRepository struct {
	mock.Mock
}

func (m *MockZoneRepository) ListActiveByCity(ctx context.Context, city string) ([]*domain.Zone, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Zone), args.Error(1)
}

// MockPricingRepository is a mock of PricingRepository
type MockPricingRepository struct {
	mock.Mock
}

func (m *MockPricingRepository) GetActiveConfig(ctx context.Context, city, vehicleType string) (*domain.PricingConfig, error) {
	args := m.Called(ctx, city, vehicleType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricingConfig), args.Error(1)
}

func (m *MockPricingRepository) CreateConfigVersion(ctx context.Context, cfg *domain.PricingConfig) (*domain.PricingConfig, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricingConfig), args.Error(1)
}

func (m *MockPricingRepository) ListSurgeRules(ctx context.Context, pricingConfigID int64) ([]domain.SurgeRule, error) {
	args := m.Called(ctx, pricingConfigID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SurgeRule), args.Error(1)
}

func (m *MockPricingRepository) ListCitySlabs(ctx context.Context, city, vehicleType string) ([]domain.DistanceSlab, error) {
	args := m.Called(ctx, city, vehicleType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DistanceSlab), args.Error(1)
}

func (m *MockPricingRepository) ListZoneSlabs(ctx context.Context, zoneID int64, vehicleType string) ([]domain.DistanceSlab, error) {
	args := m.Called(ctx, zoneID, vehicleType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DistanceSlab), args.Error(1)
}

func (m *MockPricingRepository) GetZoneVehiclePricing(ctx context.Context, zoneID int64, vehicleType string) (*domain.ZoneVehiclePricing, error) {
	args := m.Called(ctx, zoneID, vehicleType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ZoneVehiclePricing), args.Error(1)
}

func (m *MockPricingRepository) ListZonePairPricing(ctx context.Context, city, fromZoneCode, toZoneCode, vehicleType string) ([]domain.ZonePairVehiclePricing, error) {
	args := m.Called(ctx, city, fromZoneCode, toZoneCode, vehicleType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ZonePairVehiclePricing), args.Error(1)
}

// MockQuoteRepository is a mock of QuoteRepository
type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) CreateQuote(ctx context.Context, quote *domain.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepository) CreateQuotePair(ctx context.Context, outbound, returnLeg *domain.Quote) error {
	args := m.Called(ctx, outbound, returnLeg)
	return args.Error(0)
}

func (m *MockQuoteRepository) GetQuote(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteRepository) CreateActual(ctx context.Context, actual *domain.PricingActual) error {
	args := m.Called(ctx, actual)
	return args.Error(0)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) GetRoute(ctx context.Context, key string) (*domain.RouteResult, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RouteResult), args.Error(1)
}

func (m *MockCacheRepository) SetRoute(ctx context.Context, key string, route *domain.RouteResult, ttl time.Duration) error {
	args := m.Called(ctx, key, route, ttl)
	return args.Error(0)
}

// MockRouteProvider is a mock of RouteProvider
type MockRouteProvider struct {
	mock.Mock
	name string
}

func (m *MockRouteProvider) GetRoute(ctx context.Context, pickup, drop domain.Coordinate) (*domain.RouteResult, error) {
	args := m.Called(ctx, pickup, drop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RouteResult), args.Error(1)
}

func (m *MockRouteProvider) Name() string {
	if m.name != "" {
		return m.name
	}
	return "mock_provider"
}
