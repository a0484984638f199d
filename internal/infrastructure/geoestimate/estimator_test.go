package geoestimate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/domain"
	"github.com/delivery-pricing-service/internal/pkg/utils"
)

func TestEstimator_GetRoute(t *testing.T) {
	e := NewEstimator(zap.NewNop())
	ctx := context.Background()

	pickup := domain.Coordinate{Lat: 12.9716, Lng: 77.5946}
	drop := domain.Coordinate{Lat: 12.9352, Lng: 77.6245}

	route, err := e.GetRoute(ctx, pickup, drop)
	assert.NoError(t, err)
	assert.Equal(t, domain.ProviderHaversineFallback, route.Provider)

	straight := utils.HaversineDistance(pickup.Lat, pickup.Lng, drop.Lat, drop.Lng)
	assert.InDelta(t, straight*1.4, float64(route.DistanceM), 1.0)

	// 25 км/ч: секунды = метры * 3.6 / 25
	assert.InDelta(t, float64(route.DistanceM)*3.6/25.0, float64(route.DurationS), 1.0)
	assert.Nil(t, route.DurationInTrafficS)
}

func TestEstimator_Deterministic(t *testing.T) {
	e := NewEstimator(zap.NewNop())
	ctx := context.Background()

	pickup := domain.Coordinate{Lat: 12.9716, Lng: 77.5946}
	drop := domain.Coordinate{Lat: 13.1986, Lng: 77.7066}

	first, err := e.GetRoute(ctx, pickup, drop)
	assert.NoError(t, err)
	second, err := e.GetRoute(ctx, pickup, drop)
	assert.NoError(t, err)
	assert.Equal(t, first.DistanceM, second.DistanceM)
	assert.Equal(t, first.DurationS, second.DurationS)
}

func TestEstimator_ZeroDistance(t *testing.T) {
	e := NewEstimator(zap.NewNop())
	p := domain.Coordinate{Lat: 12.9716, Lng: 77.5946}

	route, err := e.GetRoute(context.Background(), p, p)
	assert.NoError(t, err)
	assert.Zero(t, route.DistanceM)
	assert.Zero(t, route.DurationS)
}
