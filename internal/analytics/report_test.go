package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestComposeReportZeroSessionsGuard(t *testing.T) {
	events := []Event{
		eventAt("widget_loaded", "", "2026-03-05T09:00:00Z"),
	}
	overview := BuildOverview("acme", events, day("2026-03-05"), day("2026-03-05"))
	require.Zero(t, overview.UniqueSessions)

	report := ComposeReport(overview, events)

	assert.Equal(t, "0%", report.Insights.SessionConversionRate)
	assert.Equal(t, "0", report.Insights.AvgSessionLength)
}

func TestComposeReportRates(t *testing.T) {
	events := []Event{
		eventAt("widget_loaded", "s1", "2026-03-05T09:00:00Z"),
		eventAt("message_sent", "s1", "2026-03-05T09:01:00Z"),
		eventAt("message_sent", "s1", "2026-03-05T09:02:00Z"),
		eventAt("message_sent", "s2", "2026-03-05T09:03:00Z"),
	}
	overview := BuildOverview("acme", events, day("2026-03-05"), day("2026-03-05"))
	report := ComposeReport(overview, events)

	// 3 message_sent over 2 unique sessions.
	assert.Equal(t, "150.00%", report.Insights.SessionConversionRate)
	// 4 events over 2 sessions.
	assert.Equal(t, "2.0", report.Insights.AvgSessionLength)
	assert.Equal(t, 4, report.Insights.TotalEngagement)
	assert.Equal(t, "1 days", report.Period)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestTopEventTypesRankingAndTies(t *testing.T) {
	var events []Event
	add := func(eventType string, n int) {
		for i := 0; i < n; i++ {
			events = append(events, eventAt(eventType, "s1", "2026-03-05T09:00:00Z"))
		}
	}
	add("widget_loaded", 3)
	add("widget_opened", 2)
	add("message_sent", 2)
	add("session_created", 1)
	add("link_clicked", 1)
	add("widget_closed", 1)

	top := topEventTypes(events, 5)
	require.Len(t, top, 5)
	assert.Equal(t, EventTypeCount{Type: "widget_loaded", Count: 3}, top[0])
	// Ties keep first-seen order.
	assert.Equal(t, "widget_opened", top[1].Type)
	assert.Equal(t, "message_sent", top[2].Type)
	assert.Equal(t, "session_created", top[3].Type)
	assert.Equal(t, "link_clicked", top[4].Type)
}

func TestAgentBreakdown(t *testing.T) {
	events := []Event{
		{EventType: "widget_loaded", UserAgent: chromeUA},
		{EventType: "widget_loaded", UserAgent: chromeUA},
		{EventType: "widget_loaded"},
	}
	browsers, platforms := agentBreakdown(events)
	assert.Equal(t, 2, browsers["Chrome"])
	assert.Equal(t, 2, platforms["Windows"])
	// Events without a user agent don't contribute at all.
	total := 0
	for _, n := range browsers {
		total += n
	}
	assert.Equal(t, 2, total)
}
