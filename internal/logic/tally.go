package logic

import "time"

// Tally accumulates session metrics for reported patterns.
type Tally struct {
	startTime     time.Time
	prevLast      time.Time
	total         int
	counts        Counts
	lastHeartbeat time.Time
}

// NewTally creates a tally. The startTime is the reference for the interval
// of the first pattern and for uptime in heartbeat events.
func NewTally(startTime time.Time) *Tally {
	return &Tally{
		startTime:     startTime,
		prevLast:      startTime,
		lastHeartbeat: startTime,
	}
}

// Record counts a closed pattern and returns the metric to report.
// The interval runs from the last press of the previous pattern to the
// first press of this one.
func (t *Tally) Record(p Pattern) Metric {
	t.total++
	for _, c := range p.Presses {
		switch c {
		case LeftOnly:
			t.counts.Left++
		case RightOnly:
			t.counts.Right++
		case Both:
			t.counts.Both++
		}
	}

	interval := p.First.Sub(t.prevLast)
	if interval < 0 {
		interval = 0
	}
	t.prevLast = p.Last

	return Metric{
		Timestamp: p.Last,
		Key:       p.Key,
		Name:      p.Name,
		Interval:  interval,
		Count:     t.total,
	}
}

// Total returns the number of patterns recorded since startup.
func (t *Tally) Total() int {
	return t.total
}

// CountsSnapshot returns a copy of the per-classification press counts.
func (t *Tally) CountsSnapshot() Counts {
	return t.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (t *Tally) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(t.lastHeartbeat) < interval {
		return nil
	}

	t.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(t.startTime),
		Counts:    t.counts,
		Total:     t.total,
	}
}
