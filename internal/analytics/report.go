package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/mileusna/useragent"
)

// EventTypeCount is one ranked entry in a report's top event types.
type EventTypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Insights are the derived figures attached to a report.
type Insights struct {
	TotalEngagement       int              `json:"totalEngagement"`
	SessionConversionRate string           `json:"sessionConversionRate"`
	AvgSessionLength      string           `json:"avgSessionLength"`
	TopEventTypes         []EventTypeCount `json:"topEventTypes"`
	Browsers              map[string]int   `json:"browsers"`
	Platforms             map[string]int   `json:"platforms"`
}

// Report is an overview plus insights, generated on demand and never stored.
type Report struct {
	TenantID     string        `json:"tenantId"`
	GeneratedAt  time.Time     `json:"generatedAt"`
	Period       string        `json:"period"`
	Overview     Overview      `json:"overview"`
	DailyMetrics []DailyBucket `json:"dailyMetrics"`
	Insights     Insights      `json:"insights"`
}

// ComposeReport derives the insight figures from an overview and the events
// behind it. The conversion rate is message_sent events per unique session;
// both rate and average guard the zero-session case so the output is never
// NaN or Inf.
func ComposeReport(overview Overview, events []Event) Report {
	conversionRate := "0%"
	avgSessionLength := "0"
	if overview.UniqueSessions > 0 {
		sent := overview.EventTypes["message_sent"]
		conversionRate = fmt.Sprintf("%.2f%%", float64(sent)/float64(overview.UniqueSessions)*100)
		avgSessionLength = fmt.Sprintf("%.1f", float64(overview.TotalEvents)/float64(overview.UniqueSessions))
	}

	browsers, platforms := agentBreakdown(events)

	return Report{
		TenantID:     overview.TenantID,
		GeneratedAt:  time.Now().UTC(),
		Period:       periodLabel(overview),
		Overview:     overview,
		DailyMetrics: overview.DailyBreakdown,
		Insights: Insights{
			TotalEngagement:       overview.TotalEvents,
			SessionConversionRate: conversionRate,
			AvgSessionLength:      avgSessionLength,
			TopEventTypes:         topEventTypes(events, 5),
			Browsers:              browsers,
			Platforms:             platforms,
		},
	}
}

// topEventTypes ranks event types by count descending. Ties keep the order
// in which the type was first seen in the event stream (stable sort over
// first-seen order), truncated to n.
func topEventTypes(events []Event, n int) []EventTypeCount {
	counts := make(map[string]int)
	var order []string
	for _, ev := range events {
		if _, seen := counts[ev.EventType]; !seen {
			order = append(order, ev.EventType)
		}
		counts[ev.EventType]++
	}

	ranked := make([]EventTypeCount, 0, len(order))
	for _, t := range order {
		ranked = append(ranked, EventTypeCount{Type: t, Count: counts[t]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// agentBreakdown tallies browser and OS names from stored user agents.
// Events without a user agent are skipped; unrecognized agents count as
// "Other".
func agentBreakdown(events []Event) (browsers, platforms map[string]int) {
	browsers = make(map[string]int)
	platforms = make(map[string]int)
	for _, ev := range events {
		if ev.UserAgent == "" {
			continue
		}
		ua := useragent.Parse(ev.UserAgent)
		name := ua.Name
		if name == "" {
			name = "Other"
		}
		browsers[name]++
		platform := ua.OS
		if platform == "" {
			platform = "Other"
		}
		platforms[platform]++
	}
	return browsers, platforms
}

func periodLabel(overview Overview) string {
	start, err1 := time.ParseInLocation(dayLayout, overview.DateRange.Start, time.UTC)
	end, err2 := time.ParseInLocation(dayLayout, overview.DateRange.End, time.UTC)
	if err1 != nil || err2 != nil {
		return ""
	}
	days := int(end.Sub(start).Hours()/24) + 1
	return fmt.Sprintf("%d days", days)
}
