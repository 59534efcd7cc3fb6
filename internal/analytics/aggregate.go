package analytics

import "time"

// The aggregation functions are pure: they operate on an already collected
// event slice and hold no state, so overviews are always recomputed from
// durable storage on request.

// DailyBucket is one calendar day's slice of a breakdown. Buckets exist
// for every day in the requested window, zero-valued when the day saw no
// events, so charts get a gap-free series.
type DailyBucket struct {
	Date           string         `json:"date"`
	TotalEvents    int            `json:"totalEvents"`
	UniqueSessions int            `json:"uniqueSessions"`
	EventTypes     map[string]int `json:"eventTypes"`
}

// Overview summarizes a tenant's events over a date window.
type Overview struct {
	TenantID       string         `json:"tenantId"`
	DateRange      DateRange      `json:"dateRange"`
	TotalEvents    int            `json:"totalEvents"`
	UniqueSessions int            `json:"uniqueSessions"`
	EventTypes     map[string]int `json:"eventTypes"`
	DailyBreakdown []DailyBucket  `json:"dailyBreakdown"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CountEventTypes builds a frequency table of event types.
func CountEventTypes(events []Event) map[string]int {
	types := make(map[string]int)
	for _, ev := range events {
		types[ev.EventType]++
	}
	return types
}

// CountUniqueSessions counts distinct non-empty session ids. Events with
// no session are excluded entirely.
func CountUniqueSessions(events []Event) int {
	seen := make(map[string]struct{})
	for _, ev := range events {
		if ev.SessionID != "" {
			seen[ev.SessionID] = struct{}{}
		}
	}
	return len(seen)
}

// DailyBreakdown buckets events by the UTC calendar date of their stored
// timestamp across [start, end]. Events dated outside the window are
// ignored rather than mis-bucketed.
func DailyBreakdown(events []Event, start, end time.Time) []DailyBucket {
	startDay := utcDay(start)
	endDay := utcDay(end)

	var buckets []DailyBucket
	index := make(map[string]int)
	sessions := make(map[string]map[string]struct{})
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		date := day.Format(dayLayout)
		index[date] = len(buckets)
		sessions[date] = make(map[string]struct{})
		buckets = append(buckets, DailyBucket{
			Date:       date,
			EventTypes: make(map[string]int),
		})
	}

	for _, ev := range events {
		date := ev.Timestamp.UTC().Format(dayLayout)
		i, ok := index[date]
		if !ok {
			continue
		}
		buckets[i].TotalEvents++
		buckets[i].EventTypes[ev.EventType]++
		if ev.SessionID != "" {
			sessions[date][ev.SessionID] = struct{}{}
		}
	}
	for i := range buckets {
		buckets[i].UniqueSessions = len(sessions[buckets[i].Date])
	}
	return buckets
}

// BuildOverview composes the totals, the unique-session count, the type
// frequency table and the daily breakdown for one tenant window.
func BuildOverview(tenantID string, events []Event, start, end time.Time) Overview {
	return Overview{
		TenantID: tenantID,
		DateRange: DateRange{
			Start: utcDay(start).Format(dayLayout),
			End:   utcDay(end).Format(dayLayout),
		},
		TotalEvents:    len(events),
		UniqueSessions: CountUniqueSessions(events),
		EventTypes:     CountEventTypes(events),
		DailyBreakdown: DailyBreakdown(events, start, end),
	}
}
