package analytics

import (
	"encoding/json"
	"fmt"
	"time"
)

// Service is the analytics subsystem behind the ingestion and reporting
// endpoints. It owns no in-memory state between requests; every read
// reconstructs its result from the shard store.
type Service struct {
	store ShardStore
}

// NewService wires the service to a shard store. The caller composes the
// store (normally a FileStore rooted under the data directory) and owns
// the lifecycle.
func NewService(store ShardStore) *Service {
	return &Service{store: store}
}

// Track validates and persists one event. The timestamp is stamped here
// with the current UTC instant; caller-supplied event time is not trusted.
// A storage failure propagates so the caller knows the event was lost.
func (s *Service) Track(in EventInput) (*Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ev := Event{
		EventType: in.EventType,
		TenantID:  in.TenantID,
		SessionID: in.SessionID,
		Timestamp: now,
		Data:      in.Data,
		UserAgent: in.UserAgent,
		IPAddress: in.IPAddress,
	}
	if ev.Data == nil {
		ev.Data = map[string]any{}
	}

	record, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	if err := s.store.Append(ev.TenantID, now, record); err != nil {
		return nil, err
	}
	return &ev, nil
}

// window returns the UTC day range covering the last `days` calendar days
// ending today. days < 1 falls back to 1.
func window(days int) (start, end time.Time) {
	if days < 1 {
		days = 1
	}
	end = utcDay(time.Now())
	start = end.AddDate(0, 0, -(days - 1))
	return start, end
}

// Overview recomputes the tenant summary for the last `days` days.
func (s *Service) Overview(tenantID string, days int) (*Overview, error) {
	start, end := window(days)
	events, err := s.CollectRange(tenantID, start, end)
	if err != nil {
		return nil, err
	}
	overview := BuildOverview(tenantID, events, start, end)
	return &overview, nil
}

// DailySummary aggregates a metrics window into headline figures.
type DailySummary struct {
	TotalEvents     int          `json:"totalEvents"`
	AvgEventsPerDay float64      `json:"avgEventsPerDay"`
	TotalSessions   int          `json:"totalSessions"`
	MostActiveDay   *DailyBucket `json:"mostActiveDay"`
}

// DailyMetrics is the per-day series plus its summary.
type DailyMetrics struct {
	TenantID string        `json:"tenantId"`
	Period   string        `json:"period"`
	Metrics  []DailyBucket `json:"metrics"`
	Summary  DailySummary  `json:"summary"`
}

// Metrics returns the gap-free daily series for the last `days` days with
// a summary block for the dashboard.
func (s *Service) Metrics(tenantID string, days int) (*DailyMetrics, error) {
	if days < 1 {
		days = 1
	}
	start, end := window(days)
	events, err := s.CollectRange(tenantID, start, end)
	if err != nil {
		return nil, err
	}
	breakdown := DailyBreakdown(events, start, end)

	var mostActive *DailyBucket
	for i := range breakdown {
		if mostActive == nil || breakdown[i].TotalEvents > mostActive.TotalEvents {
			mostActive = &breakdown[i]
		}
	}

	return &DailyMetrics{
		TenantID: tenantID,
		Period:   fmt.Sprintf("%d days", days),
		Metrics:  breakdown,
		Summary: DailySummary{
			TotalEvents:     len(events),
			AvgEventsPerDay: float64(len(events)) / float64(days),
			TotalSessions:   CountUniqueSessions(events),
			MostActiveDay:   mostActive,
		},
	}, nil
}

// Report builds the full report for the last `days` days.
func (s *Service) Report(tenantID string, days int) (*Report, error) {
	start, end := window(days)
	events, err := s.CollectRange(tenantID, start, end)
	if err != nil {
		return nil, err
	}
	report := ComposeReport(BuildOverview(tenantID, events, start, end), events)
	return &report, nil
}
