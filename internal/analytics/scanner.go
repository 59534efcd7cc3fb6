package analytics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"
)

// CollectRange reads back every event for the tenant between start and end
// (inclusive UTC calendar days, time-of-day ignored). Events come out in
// day order, then append order within a day; no re-sorting by timestamp.
//
// A missing shard is a day with no events, not an error. Unreadable shards
// and corrupt lines are logged and skipped so one bad file never aborts
// the whole scan.
func (s *Service) CollectRange(tenantID string, start, end time.Time) ([]Event, error) {
	startDay := utcDay(start)
	endDay := utcDay(end)
	if startDay.After(endDay) {
		return nil, fmt.Errorf("%w: start date after end date", ErrValidation)
	}

	var events []Event
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		name := ShardName(tenantID, day)
		data, err := s.store.ReadShard(name)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Printf("analytics: skipping unreadable shard %s: %v", name, err)
			}
			continue
		}
		events = append(events, parseShardLines(name, data)...)
	}
	return events, nil
}

// parseShardLines decodes one event per line. A partial trailing line from
// an in-flight append fails to decode and is skipped like any corrupt line.
func parseShardLines(name string, data []byte) []Event {
	var events []Event
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			log.Printf("analytics: skipping corrupt line in %s: %v", name, err)
			continue
		}
		events = append(events, ev)
	}
	return events
}

// utcDay truncates t to its UTC calendar day.
func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
