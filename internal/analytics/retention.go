package analytics

import (
	"log"
	"time"
)

// Sweep deletes every shard whose day is strictly before today minus
// daysToKeep (UTC). A shard dated exactly on the cutoff is retained.
// Files whose name doesn't parse as tenant/day are left untouched, and a
// failed delete is logged and skipped so the sweep always finishes.
func (s *Service) Sweep(daysToKeep int) (cleaned int, cutoff time.Time, err error) {
	cutoff = utcDay(time.Now()).AddDate(0, 0, -daysToKeep)

	shards, err := s.store.ListShards()
	if err != nil {
		return 0, cutoff, err
	}
	for _, shard := range shards {
		if shard.Day.IsZero() || !shard.Day.Before(cutoff) {
			continue
		}
		if err := s.store.DeleteShard(shard.Name); err != nil {
			log.Printf("analytics: failed to delete expired shard %s: %v", shard.Name, err)
			continue
		}
		cleaned++
	}
	return cleaned, cutoff, nil
}

// StartRetentionWorker launches a background goroutine that sweeps expired
// shards once at startup and then once per day.
func StartRetentionWorker(svc *Service, daysToKeep int) {
	go func() {
		runSweep(svc, daysToKeep)

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			runSweep(svc, daysToKeep)
		}
	}()
}

func runSweep(svc *Service, daysToKeep int) {
	cleaned, cutoff, err := svc.Sweep(daysToKeep)
	if err != nil {
		log.Printf("analytics retention sweep error: %v", err)
		return
	}
	if cleaned > 0 {
		log.Printf("analytics retention: removed %d shards older than %s", cleaned, cutoff.Format(dayLayout))
	}
}
