package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skitterwm/skitter/internal/anim"
	"github.com/skitterwm/skitter/internal/config"
	"github.com/skitterwm/skitter/internal/geometry"
	"github.com/skitterwm/skitter/internal/hover"
	"github.com/skitterwm/skitter/internal/monitors"
	"github.com/skitterwm/skitter/internal/placement"
	"github.com/skitterwm/skitter/internal/proximity"
	"github.com/skitterwm/skitter/internal/recovery"
)

// Recovery component names.
const (
	ComponentCursor  = "cursor"
	ComponentWindows = "windows"
	ComponentMover   = "mover"
	ComponentTick    = "engine"
)

// State is the engine lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

var (
	// ErrAlreadyRunning is returned by Start when the engine is running.
	ErrAlreadyRunning = errors.New("engine: already running")
	// ErrFaulted is returned by Start after an unrecoverable tick
	// failure; only Restart clears it.
	ErrFaulted = errors.New("engine: faulted, restart required")
)

// Hooks is the engine's event surface. Nil hooks are skipped. Hooks run
// on the tick thread and must return quickly.
type Hooks struct {
	OnWindowPushed      func(handle uint32, distance float64)
	OnPerformanceSample func(stats Stats)
	OnConfigApplied     func(result config.ApplyResult)
}

// Deps are the engine's collaborators.
type Deps struct {
	Cursor    CursorSource
	Windows   WindowSource
	Registry  *monitors.Registry
	Recovery  *recovery.Manager
	Scheduler Scheduler
	Logger    *slog.Logger
	Hooks     Hooks
}

// samplePeriod spaces performance-statistics events.
const samplePeriod = 5 * time.Second

// Engine owns the avoidance loop. All per-window state (hover machines,
// animation jobs) lives on the tick thread; the config snapshot and the
// monitor registry are the only cross-thread state, both atomic.
type Engine struct {
	deps   Deps
	logger *slog.Logger

	cfg     atomic.Pointer[config.Config] // live snapshot read by ticks
	pending atomic.Pointer[config.Config] // full incoming config, applied on restart

	paused  atomic.Bool
	state   atomic.Int32
	tracked atomic.Int64
	latest  atomic.Pointer[Stats]

	mu     sync.Mutex // serializes Start/Stop/Restart
	handle ScheduleHandle

	// Tick-thread state. Never touched off the tick thread while the
	// schedule is active.
	hover      *hover.Tracker
	mover      *anim.Mover
	tickCfg    *config.Config
	known      map[uint32]struct{}
	stats      statsWindow
	lastSample time.Time
}

// New builds an engine with the given collaborators and initial config.
// Recovery components the caller has not already registered (the daemon
// registers the X-backed ones with reconnect actions) are registered
// here with no self-heal action.
func New(deps Deps, cfg *config.Config) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Scheduler == nil {
		deps.Scheduler = NewTickerScheduler()
	}
	e := &Engine{
		deps:   deps,
		logger: logger,
		known:  make(map[uint32]struct{}),
	}
	e.cfg.Store(cfg.Clone())
	e.pending.Store(cfg.Clone())
	e.state.Store(int32(StateStopped))

	for _, name := range []string{ComponentCursor, ComponentWindows, ComponentMover, ComponentTick} {
		if deps.Recovery.State(name) == recovery.StateDisabled {
			deps.Recovery.Register(name, nil)
		}
	}
	return e
}

// State returns the engine lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Paused reports whether pushes are suspended.
func (e *Engine) Paused() bool {
	return e.paused.Load()
}

// Pause suspends pushes without stopping the loop.
func (e *Engine) Pause() {
	e.paused.Store(true)
	e.logger.Info("engine paused")
}

// Resume re-enables pushes.
func (e *Engine) Resume() {
	e.paused.Store(false)
	e.logger.Info("engine resumed")
}

// Config returns the live configuration snapshot.
func (e *Engine) Config() *config.Config {
	return e.cfg.Load()
}

// TrackedWindows returns the window count from the last tick.
func (e *Engine) TrackedWindows() int {
	return int(e.tracked.Load())
}

// LastSample returns the most recent performance sample.
func (e *Engine) LastSample() Stats {
	if s := e.latest.Load(); s != nil {
		return *s
	}
	return Stats{}
}

// Start begins ticking at the configured poll interval. It fails fast
// when the engine is already starting or running.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startLocked()
}

func (e *Engine) startLocked() error {
	switch e.State() {
	case StateStarting, StateRunning:
		return ErrAlreadyRunning
	case StateFaulted:
		return ErrFaulted
	}
	e.state.Store(int32(StateStarting))

	cfg := e.cfg.Load()
	e.hover = hover.NewTracker(cfg.HoverTimeout(), cfg.Hover.Enabled)
	e.mover = anim.NewMover(moverOptions(cfg))
	e.tickCfg = cfg
	e.known = make(map[uint32]struct{})
	e.stats = statsWindow{}
	e.lastSample = time.Now()

	e.handle = e.deps.Scheduler.ScheduleRepeating(cfg.PollInterval(), e.tick)
	e.state.Store(int32(StateRunning))
	e.logger.Info("engine started", "poll_interval", cfg.PollInterval())
	return nil
}

// Stop cancels the tick schedule and waits for any in-flight tick to
// finish. Active animations are discarded, not completed.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.State() != StateRunning && e.State() != StateFaulted {
		return
	}
	e.state.Store(int32(StateStopping))
	if e.handle != nil {
		e.handle.Cancel()
		e.handle = nil
	}
	// The tick thread is quiesced; it is safe to drop its state.
	if e.mover != nil {
		e.mover.Reset()
	}
	if e.hover != nil {
		e.hover.Reset()
	}
	e.state.Store(int32(StateStopped))
	e.logger.Info("engine stopped")
}

// Restart stops the loop, promotes any restart-required config fields,
// and starts again. It also clears a Faulted state.
func (e *Engine) Restart() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()
	e.cfg.Store(e.pending.Load().Clone())
	return e.startLocked()
}

// ApplyConfig validates and hot-swaps an incoming configuration.
// Hot-swappable fields take effect on the next tick; restart-required
// fields are recorded and promoted by Restart. Invalid configs are
// rejected wholesale and the live config is untouched.
func (e *Engine) ApplyConfig(incoming *config.Config) (config.ApplyResult, error) {
	live := e.cfg.Load()
	result, err := config.Plan(live, incoming)
	if err != nil {
		e.logger.Warn("config rejected", "error", err)
		return config.ApplyResult{}, err
	}
	if result.Changed() {
		merged := config.Merge(live, incoming)
		e.cfg.Store(merged)
		e.pending.Store(incoming.Clone())
		e.logger.Info("config applied",
			"applied", result.Applied,
			"pending_restart", result.PendingRestart)
		if diff := config.Diff(live, merged); diff != "" {
			e.logger.Debug("config diff", "diff", diff)
		}
	}
	if e.deps.Hooks.OnConfigApplied != nil {
		e.deps.Hooks.OnConfigApplied(result)
	}
	return result, nil
}

// tick is one pass of the avoidance loop. A panic in tick work is
// caught and reported; the loop only faults once the tick breaker
// itself opens.
func (e *Engine) tick(now time.Time) {
	if e.State() != StateRunning {
		return
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tick panic", "panic", r)
			e.deps.Recovery.ReportFailure(context.Background(), ComponentTick, fmt.Errorf("tick panic: %v", r))
			if e.deps.Recovery.State(ComponentTick) == recovery.StateOpen {
				e.fault()
			}
		}
	}()

	cfg := e.cfg.Load()
	if cfg != e.tickCfg {
		e.reconfigure(cfg)
	}

	if e.paused.Load() {
		return
	}

	pushes := e.runTick(now, cfg)
	e.stats.record(time.Since(start), int(e.tracked.Load()), pushes)
	if now.Sub(e.lastSample) >= samplePeriod {
		e.lastSample = now
		sample := e.stats.sample(now)
		e.latest.Store(&sample)
		e.logger.Debug("performance sample",
			"ticks", sample.Ticks,
			"pushes", sample.Pushes,
			"tracked", sample.TrackedWindows,
			"avg_tick", sample.AvgTickDuration,
			"cpu_pct", sample.CPUPercent)
		if e.deps.Hooks.OnPerformanceSample != nil {
			e.deps.Hooks.OnPerformanceSample(sample)
		}
	}
}

func (e *Engine) runTick(now time.Time, cfg *config.Config) uint64 {
	cursor, ok := e.sampleCursor()
	if !ok {
		return 0
	}

	override := false
	if cfg.Engine.CtrlOverride {
		active, err := e.deps.Cursor.OverrideActive()
		if err != nil {
			e.logger.Debug("override key query failed", "error", err)
		} else {
			override = active
		}
	}

	windows, ok := e.listWindows(cfg.Engine.ApplyToAllWindows)
	if !ok {
		return 0
	}
	e.tracked.Store(int64(len(windows)))
	e.pruneVanished(windows)

	var pushes uint64
	for _, win := range windows {
		if e.processWindow(win, cursor, override, cfg, now) {
			pushes++
		}
	}

	for _, frame := range e.mover.Advance(now) {
		e.moveWindow(frame.Handle, frame.Bounds)
	}
	return pushes
}

// processWindow runs the detection pipeline for one window and reports
// whether a new push target was issued. Failures are isolated to the
// window; the tick continues for the rest.
func (e *Engine) processWindow(win Window, cursor geometry.Point, override bool, cfg *config.Config, now time.Time) bool {
	mon, err := e.deps.Registry.Resolve(win.Bounds)
	if err != nil {
		e.logger.Debug("monitor resolve failed", "window", win.Handle, "error", err)
		return false
	}

	params := proximity.Params{
		ThresholdLogical:    cfg.Proximity.ThresholdPx,
		PushDistanceLogical: cfg.Proximity.PushDistancePx,
	}
	push, within, err := proximity.Evaluate(cursor, win.Bounds, mon.Scale, params)
	if err != nil {
		e.logger.Warn("proximity evaluation failed", "window", win.Handle, "error", err)
		return false
	}

	// The hover machine advances on every tick so exits reset state
	// even while suppressed or overridden.
	state := e.hover.Update(win.Handle, within, now)
	if !within || state == hover.Suppressed || override {
		return false
	}

	target := win.Bounds.Translate(push.DX, push.DY)
	wrapped := placement.ResolveWrap(target, push.DX, push.DY, mon, e.deps.Registry, placement.WrapOptions{
		Enabled:         cfg.Wrap.Enabled,
		Mode:            cfg.Wrap.Mode,
		RespectWorkArea: cfg.Wrap.RespectWorkArea,
	})

	destMon := mon
	if wrapped != target {
		if m, err := e.deps.Registry.Resolve(wrapped); err == nil {
			destMon = m
		}
	}
	clamped, err := placement.Clamp(wrapped, destMon.Area(cfg.Wrap.RespectWorkArea), float64(cfg.Engine.EdgeBufferPx))
	if err != nil {
		e.logger.Warn("unsafe move target", "window", win.Handle, "target", wrapped, "error", err)
		return false
	}

	// Already animating toward the same place: leave the job alone.
	if current, active := e.mover.Target(win.Handle); active && rectsClose(current, clamped) {
		return false
	}

	frame, immediate := e.mover.Start(win.Handle, win.Bounds, clamped, now)
	if immediate {
		e.moveWindow(frame.Handle, frame.Bounds)
	}
	if e.deps.Hooks.OnWindowPushed != nil {
		e.deps.Hooks.OnWindowPushed(win.Handle, push.Distance)
	}
	return true
}

func (e *Engine) sampleCursor() (geometry.Point, bool) {
	if err := e.deps.Recovery.Allow(ComponentCursor); err != nil {
		return geometry.Point{}, false
	}
	cursor, err := e.deps.Cursor.Sample()
	if err != nil {
		e.deps.Recovery.ReportFailure(context.Background(), ComponentCursor, err)
		return geometry.Point{}, false
	}
	e.deps.Recovery.ReportSuccess(ComponentCursor)
	return cursor, true
}

func (e *Engine) listWindows(all bool) ([]Window, bool) {
	if err := e.deps.Recovery.Allow(ComponentWindows); err != nil {
		return nil, false
	}
	windows, err := e.deps.Windows.ListTracked(all)
	if err != nil {
		e.deps.Recovery.ReportFailure(context.Background(), ComponentWindows, err)
		return nil, false
	}
	e.deps.Recovery.ReportSuccess(ComponentWindows)
	return windows, true
}

func (e *Engine) moveWindow(handle uint32, bounds geometry.Rect) {
	if err := e.deps.Recovery.Allow(ComponentMover); err != nil {
		return
	}
	if err := e.deps.Windows.Move(handle, bounds); err != nil {
		e.deps.Recovery.ReportFailure(context.Background(), ComponentMover, err)
		return
	}
	e.deps.Recovery.ReportSuccess(ComponentMover)
}

// pruneVanished drops hover and animation state for windows that left
// the tracked set.
func (e *Engine) pruneVanished(windows []Window) {
	current := make(map[uint32]struct{}, len(windows))
	for _, w := range windows {
		current[w.Handle] = struct{}{}
	}
	for handle := range e.known {
		if _, ok := current[handle]; !ok {
			e.hover.Forget(handle)
			e.mover.Cancel(handle)
		}
	}
	e.known = current
}

// reconfigure applies a hot-swapped config snapshot to tick-thread
// state. Runs on the tick thread.
func (e *Engine) reconfigure(cfg *config.Config) {
	e.hover.Configure(cfg.HoverTimeout(), cfg.Hover.Enabled)
	e.mover.Configure(moverOptions(cfg))
	e.tickCfg = cfg
}

// fault marks the engine Faulted and tears down the schedule from a
// separate goroutine, since Cancel waits for the current tick.
func (e *Engine) fault() {
	e.state.Store(int32(StateFaulted))
	e.logger.Error("engine faulted; restart required")
	go func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.handle != nil {
			e.handle.Cancel()
			e.handle = nil
		}
	}()
}

func moverOptions(cfg *config.Config) anim.Options {
	gap := cfg.PollInterval() / 2
	if gap < time.Millisecond {
		gap = time.Millisecond
	}
	return anim.Options{
		Enabled:     cfg.Animation.Enabled,
		Duration:    cfg.AnimationDuration(),
		Easing:      cfg.Animation.Easing,
		MinFrameGap: gap,
	}
}

func rectsClose(a, b geometry.Rect) bool {
	const eps = 0.5
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.Width-b.Width) < eps && math.Abs(a.Height-b.Height) < eps
}
