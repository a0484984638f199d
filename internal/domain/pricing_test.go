package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bandPtr(b TimeBand) *TimeBand { return &b }

func TestMatchZonePair(t *testing.T) {
	pairs := []ZonePairVehiclePricing{
		{ID: 1, FromZoneCode: "A", ToZoneCode: "B", TimeBand: bandPtr(TimeBandMorning), BaseFare: 25000, Active: true},
		{ID: 2, FromZoneCode: "A", ToZoneCode: "B", TimeBand: nil, BaseFare: 22000, Active: true},
		{ID: 3, FromZoneCode: "B", ToZoneCode: "A", TimeBand: bandPtr(TimeBandEvening), Directional: false, BaseFare: 21000, Active: true},
		{ID: 4, FromZoneCode: "B", ToZoneCode: "A", TimeBand: nil, Directional: false, BaseFare: 20000, Active: true},
	}

	t.Run("exact match with time band", func(t *testing.T) {
		p := MatchZonePair(pairs, "A", "B", TimeBandMorning)
		require.NotNil(t, p)
		assert.Equal(t, int64(1), p.ID)
	})

	t.Run("falls back to band-less row", func(t *testing.T) {
		p := MatchZonePair(pairs, "A", "B", TimeBandAfternoon)
		require.NotNil(t, p)
		assert.Equal(t, int64(2), p.ID)
	})

	t.Run("reversed non-directional with band", func(t *testing.T) {
		p := MatchZonePair(pairs[2:], "A", "B", TimeBandEvening)
		require.NotNil(t, p)
		assert.Equal(t, int64(3), p.ID)
	})

	t.Run("reversed non-directional without band", func(t *testing.T) {
		p := MatchZonePair(pairs[3:], "A", "B", TimeBandMorning)
		require.NotNil(t, p)
		assert.Equal(t, int64(4), p.ID)
	})

	t.Run("directional reversed row is not used", func(t *testing.T) {
		directional := []ZonePairVehiclePricing{
			{ID: 5, FromZoneCode: "B", ToZoneCode: "A", Directional: true, Active: true},
		}
		assert.Nil(t, MatchZonePair(directional, "A", "B", TimeBandMorning))
	})

	t.Run("inactive rows are skipped", func(t *testing.T) {
		inactive := []ZonePairVehiclePricing{
			{ID: 6, FromZoneCode: "A", ToZoneCode: "B", Active: false},
		}
		assert.Nil(t, MatchZonePair(inactive, "A", "B", TimeBandMorning))
	})
}

func TestZoneVehiclePricing_TimePricingFor(t *testing.T) {
	p := ZoneVehiclePricing{
		TimePricing: []ZoneVehicleTimePricing{
			{TimeBand: TimeBandMorning, BaseFare: 4000, PerKMRate: 850},
			{TimeBand: TimeBandEvening, BaseFare: 4500, PerKMRate: 950},
		},
	}

	morning := p.TimePricingFor(TimeBandMorning)
	require.NotNil(t, morning)
	assert.Equal(t, int64(850), morning.PerKMRate)

	assert.Nil(t, p.TimePricingFor(TimeBandAfternoon))
}
