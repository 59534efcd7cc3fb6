package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventAt(eventType, sessionID, ts string) Event {
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return Event{EventType: eventType, TenantID: "acme", SessionID: sessionID, Timestamp: parsed}
}

func TestCountEventTypes(t *testing.T) {
	events := []Event{
		eventAt("widget_loaded", "s1", "2026-03-05T10:00:00Z"),
		eventAt("message_sent", "s1", "2026-03-05T10:01:00Z"),
		eventAt("message_sent", "s2", "2026-03-05T10:02:00Z"),
	}
	assert.Equal(t, map[string]int{"widget_loaded": 1, "message_sent": 2}, CountEventTypes(events))
}

func TestCountUniqueSessionsExcludesMissing(t *testing.T) {
	events := []Event{
		eventAt("a", "s1", "2026-03-05T10:00:00Z"),
		eventAt("b", "s1", "2026-03-05T10:01:00Z"),
		eventAt("c", "s2", "2026-03-05T10:02:00Z"),
		eventAt("d", "", "2026-03-05T10:03:00Z"),
	}
	assert.Equal(t, 2, CountUniqueSessions(events))
	assert.Len(t, events, 4)
}

func TestDailyBreakdownZeroFillsEmptyWindow(t *testing.T) {
	buckets := DailyBreakdown(nil, day("2026-03-01"), day("2026-03-05"))
	require.Len(t, buckets, 5)
	for i, b := range buckets {
		assert.Equal(t, day("2026-03-01").AddDate(0, 0, i).Format("2006-01-02"), b.Date)
		assert.Zero(t, b.TotalEvents)
		assert.Zero(t, b.UniqueSessions)
		assert.Empty(t, b.EventTypes)
	}
}

func TestDailyBreakdownAssignsByUTCDate(t *testing.T) {
	events := []Event{
		eventAt("widget_loaded", "s1", "2026-03-05T00:00:01Z"),
		eventAt("message_sent", "s1", "2026-03-05T23:59:59Z"),
		eventAt("message_sent", "s2", "2026-03-06T12:00:00Z"),
	}
	buckets := DailyBreakdown(events, day("2026-03-05"), day("2026-03-06"))
	require.Len(t, buckets, 2)

	assert.Equal(t, 2, buckets[0].TotalEvents)
	assert.Equal(t, 1, buckets[0].UniqueSessions)
	assert.Equal(t, map[string]int{"widget_loaded": 1, "message_sent": 1}, buckets[0].EventTypes)

	assert.Equal(t, 1, buckets[1].TotalEvents)
	assert.Equal(t, 1, buckets[1].UniqueSessions)
}

func TestDailyBreakdownIgnoresOutOfWindowEvents(t *testing.T) {
	events := []Event{
		eventAt("stray", "s1", "2026-02-28T10:00:00Z"),
		eventAt("kept", "s2", "2026-03-02T10:00:00Z"),
	}
	buckets := DailyBreakdown(events, day("2026-03-01"), day("2026-03-03"))
	require.Len(t, buckets, 3)
	assert.Zero(t, buckets[0].TotalEvents)
	assert.Equal(t, 1, buckets[1].TotalEvents)
	assert.Zero(t, buckets[2].TotalEvents)
}

// Mirrors the canonical two-day scenario: three events on day one with two
// distinct sessions, nothing on day two.
func TestBuildOverviewEndToEnd(t *testing.T) {
	events := []Event{
		eventAt("widget_loaded", "s1", "2026-03-05T09:00:00Z"),
		eventAt("message_sent", "s1", "2026-03-05T09:01:00Z"),
		eventAt("message_sent", "s2", "2026-03-05T09:02:00Z"),
	}

	overview := BuildOverview("acme", events, day("2026-03-05"), day("2026-03-06"))

	assert.Equal(t, "acme", overview.TenantID)
	assert.Equal(t, DateRange{Start: "2026-03-05", End: "2026-03-06"}, overview.DateRange)
	assert.Equal(t, 3, overview.TotalEvents)
	assert.Equal(t, 2, overview.UniqueSessions)
	assert.Equal(t, map[string]int{"widget_loaded": 1, "message_sent": 2}, overview.EventTypes)

	require.Len(t, overview.DailyBreakdown, 2)
	assert.Equal(t, 3, overview.DailyBreakdown[0].TotalEvents)
	assert.Equal(t, 2, overview.DailyBreakdown[0].UniqueSessions)
	assert.Zero(t, overview.DailyBreakdown[1].TotalEvents)
	assert.Zero(t, overview.DailyBreakdown[1].UniqueSessions)
}
