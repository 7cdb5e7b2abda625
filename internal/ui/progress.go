package ui

import (
	"sort"
	"sync"
	"time"
)

// Tracker tallies probe progress for display.
// It is safe for concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	total    int
	done     int
	passed   int
	warnings int
	critical int
	running  map[string]runningProbe
	recent   []ProbeEvent
	start    time.Time
	now      func() time.Time
}

type runningProbe struct {
	event   ProbeEvent
	started time.Time
}

// maxRecent bounds how many finished probes the TUI lists.
const maxRecent = 5

// ProgressStats is a snapshot of a run in progress.
type ProgressStats struct {
	Total    int
	Done     int
	Passed   int
	Warnings int
	Critical int
	Progress float64
	Elapsed  time.Duration
	// Running lists in-flight probes, longest-running first.
	Running []ProbeEvent
	// Recent lists the last finished probes, newest last.
	Recent []ProbeEvent
}

// NewTracker creates a tracker for a run of total probes.
func NewTracker(total int) *Tracker {
	return newTrackerWithClock(total, time.Now)
}

func newTrackerWithClock(total int, now func() time.Time) *Tracker {
	return &Tracker{
		total:   total,
		running: make(map[string]runningProbe),
		start:   now(),
		now:     now,
	}
}

// Started records a probe entering execution.
func (t *Tracker) Started(ev ProbeEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running[ev.ID] = runningProbe{event: ev, started: t.now()}
}

// Finished records a probe result.
func (t *Tracker) Finished(ev ProbeEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.running, ev.ID)
	t.done++
	switch ev.Severity {
	case "pass":
		t.passed++
	case "warning":
		t.warnings++
	case "critical":
		t.critical++
	}

	t.recent = append(t.recent, ev)
	if len(t.recent) > maxRecent {
		t.recent = t.recent[len(t.recent)-maxRecent:]
	}
}

// Stats returns a snapshot.
func (t *Tracker) Stats() ProgressStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.now()
	running := make([]runningProbe, 0, len(t.running))
	for _, r := range t.running {
		running = append(running, r)
	}
	sort.Slice(running, func(i, j int) bool {
		if !running[i].started.Equal(running[j].started) {
			return running[i].started.Before(running[j].started)
		}
		return running[i].event.ID < running[j].event.ID
	})

	stats := ProgressStats{
		Total:    t.total,
		Done:     t.done,
		Passed:   t.passed,
		Warnings: t.warnings,
		Critical: t.critical,
		Elapsed:  now.Sub(t.start),
		Recent:   append([]ProbeEvent(nil), t.recent...),
	}
	for _, r := range running {
		ev := r.event
		ev.Elapsed = now.Sub(r.started)
		stats.Running = append(stats.Running, ev)
	}
	if t.total > 0 {
		stats.Progress = float64(t.done) / float64(t.total)
	}
	return stats
}
