package inject

import "go.uber.org/atomic"

// Stats counts injector decisions, safe for concurrent use.
type Stats struct {
	total   atomic.Int64
	reasons [numReasons]atomic.Int64
}

type StatsSnapshot struct {
	Total    int64            `json:"total"`
	Injected int64            `json:"injected"`
	Skipped  map[string]int64 `json:"skipped"`
}

func (s *Stats) add(reason Reason) {
	s.reasons[reason].Inc()
}

func (s *Stats) Total() int64 {
	return s.total.Load()
}

func (s *Stats) Count(reason Reason) int64 {
	return s.reasons[reason].Load()
}

func (s *Stats) Snapshot() StatsSnapshot {
	snapshot := StatsSnapshot{
		Total:    s.total.Load(),
		Injected: s.reasons[ReasonInjected].Load(),
		Skipped:  make(map[string]int64, numReasons-1),
	}
	for r := ReasonInjected + 1; r < numReasons; r++ {
		snapshot.Skipped[r.String()] = s.reasons[r].Load()
	}
	return snapshot
}
