package anim

import (
	"time"

	"github.com/skitterwm/skitter/internal/geometry"
)

// Frame is a single interpolated move for one window.
type Frame struct {
	Handle uint32
	Bounds geometry.Rect
	Done   bool
}

// Options configures the mover. MinFrameGap bounds how often frames are
// produced regardless of how fast the engine ticks.
type Options struct {
	Enabled     bool
	Duration    time.Duration
	Easing      Easing
	MinFrameGap time.Duration
}

type job struct {
	start     geometry.Rect
	target    geometry.Rect
	startedAt time.Time
	lastFrame time.Time
	current   geometry.Rect
}

// Mover runs one animation job per window. It is owned by the engine's
// tick thread and is not safe for concurrent use.
type Mover struct {
	opts Options
	jobs map[uint32]*job
}

// NewMover returns a mover with the given options.
func NewMover(opts Options) *Mover {
	return &Mover{opts: opts, jobs: make(map[uint32]*job)}
}

// Configure replaces the mover's options. Active jobs keep running and
// pick up the new duration and easing on their next frame.
func (m *Mover) Configure(opts Options) {
	m.opts = opts
}

// Start begins animating a window from its current bounds toward
// target. With animation disabled it returns a single completed frame
// to be issued immediately. Retargeting an active job restarts it from
// the current interpolated position, so the window never snaps.
func (m *Mover) Start(handle uint32, from, target geometry.Rect, now time.Time) (Frame, bool) {
	if !m.opts.Enabled || m.opts.Duration <= 0 {
		delete(m.jobs, handle)
		return Frame{Handle: handle, Bounds: target, Done: true}, true
	}

	start := from
	if j, ok := m.jobs[handle]; ok {
		start = j.current
	}
	// lastFrame is primed so the Advance call in the same tick does not
	// emit a zero-progress frame at the start position.
	m.jobs[handle] = &job{
		start:     start,
		target:    target,
		startedAt: now,
		lastFrame: now,
		current:   start,
	}
	return Frame{}, false
}

// Advance produces due frames for all active jobs. Completed jobs are
// removed after emitting their final frame at the exact target.
func (m *Mover) Advance(now time.Time) []Frame {
	if len(m.jobs) == 0 {
		return nil
	}
	frames := make([]Frame, 0, len(m.jobs))
	for handle, j := range m.jobs {
		t := float64(now.Sub(j.startedAt)) / float64(m.opts.Duration)
		if t >= 1 {
			frames = append(frames, Frame{Handle: handle, Bounds: j.target, Done: true})
			delete(m.jobs, handle)
			continue
		}
		if !j.lastFrame.IsZero() && now.Sub(j.lastFrame) < m.opts.MinFrameGap {
			continue
		}
		eased := m.opts.Easing.Apply(t)
		bounds := geometry.Lerp(j.start, j.target, eased)
		j.current = bounds
		j.lastFrame = now
		frames = append(frames, Frame{Handle: handle, Bounds: bounds})
	}
	return frames
}

// Active reports whether a job is running for the window.
func (m *Mover) Active(handle uint32) bool {
	_, ok := m.jobs[handle]
	return ok
}

// Target returns the destination of the window's active job.
func (m *Mover) Target(handle uint32) (geometry.Rect, bool) {
	j, ok := m.jobs[handle]
	if !ok {
		return geometry.Rect{}, false
	}
	return j.target, true
}

// Cancel discards the window's job without completing it.
func (m *Mover) Cancel(handle uint32) {
	delete(m.jobs, handle)
}

// Reset discards every active job.
func (m *Mover) Reset() {
	m.jobs = make(map[uint32]*job)
}
