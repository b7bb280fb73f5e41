package engine

import "time"

// Stats is a periodic performance sample.
type Stats struct {
	Ticks           uint64        `json:"ticks"`
	Pushes          uint64        `json:"pushes"`
	TrackedWindows  int           `json:"tracked_windows"`
	AvgTickDuration time.Duration `json:"avg_tick_duration"`
	CPUPercent      float64       `json:"cpu_percent"`
}

// statsWindow accumulates tick timings between performance samples. It
// is owned by the tick thread.
type statsWindow struct {
	ticks     uint64
	pushes    uint64
	tracked   int
	totalWork time.Duration
	since     time.Time
}

func (s *statsWindow) record(work time.Duration, tracked int, pushes uint64) {
	if s.since.IsZero() {
		s.since = time.Now()
	}
	s.ticks++
	s.pushes += pushes
	s.tracked = tracked
	s.totalWork += work
}

// sample drains the window into a Stats value. CPU percentage is the
// share of wall time spent inside ticks since the last sample.
func (s *statsWindow) sample(now time.Time) Stats {
	out := Stats{
		Ticks:          s.ticks,
		Pushes:         s.pushes,
		TrackedWindows: s.tracked,
	}
	if s.ticks > 0 {
		out.AvgTickDuration = s.totalWork / time.Duration(s.ticks)
	}
	if elapsed := now.Sub(s.since); elapsed > 0 {
		out.CPUPercent = 100 * float64(s.totalWork) / float64(elapsed)
	}
	*s = statsWindow{since: now}
	return out
}
