package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackOpenViewsExportsGauge(t *testing.T) {
	metrics := NewMetricsService()
	store := NewViewStore(time.Minute, 10)
	metrics.TrackOpenViews(store.Len)

	store.Acquire("scope", "p1", "", "")
	store.Acquire("scope", "p2", "", "")

	families, err := metrics.registry.Gather()
	require.NoError(t, err)
	var found bool
	for _, family := range families {
		if family.GetName() != "dashboard_open_views" {
			continue
		}
		found = true
		require.Len(t, family.GetMetric(), 1)
		assert.Equal(t, float64(2), family.GetMetric()[0].GetGauge().GetValue())
	}
	assert.True(t, found)

	var none *MetricsService
	assert.NotPanics(t, func() { none.TrackOpenViews(store.Len) })
}

func TestSnapshotCountsUpstreamFailures(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveUpstream(OpAttendance, OutcomeSuccess, 10*time.Millisecond)
	metrics.ObserveUpstream(OpBehaviour, OutcomeError, 30*time.Millisecond)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(2), snap.UpstreamCalls)
	assert.Equal(t, uint64(1), snap.UpstreamFailures)
	assert.InDelta(t, 20, snap.AverageUpstreamDurationMs, 0.001)
}
