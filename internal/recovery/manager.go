// Package recovery wraps calls into platform collaborators with a
// per-component circuit breaker and bounded recovery retries, so a
// misbehaving collaborator degrades the engine instead of crashing it.
package recovery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when a component's breaker is open and
// calls to it should be skipped.
var ErrCircuitOpen = errors.New("recovery: circuit breaker is open")

// State is a component breaker's state.
type State int

const (
	// StateDisabled is reported for components never registered.
	StateDisabled State = iota
	StateClosed
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Action attempts to self-heal a component and reports success.
type Action func(ctx context.Context) bool

// Statistics exposes a component's failure and recovery counters.
type Statistics struct {
	TotalFailures       uint64
	ConsecutiveFailures uint64
	RecoveriesAttempted uint64
	RecoveriesSucceeded uint64
	State               State
}

// Settings configures the manager.
type Settings struct {
	// FailureThreshold is the consecutive-failure count that opens a
	// component's breaker.
	FailureThreshold uint64
	// MaxRetries bounds recovery-action attempts per reported failure.
	MaxRetries int
	// RetryBackoff is slept between recovery attempts. The sleep
	// respects context cancellation.
	RetryBackoff time.Duration
	// Cooldown is how long an open breaker waits before allowing a
	// half-open trial.
	Cooldown time.Duration
	// OnStateChange, if set, is invoked after every breaker transition.
	// It runs with the manager's lock held and must not call back in.
	OnStateChange func(component string, from, to State)
}

func (s *Settings) withDefaults() Settings {
	out := *s
	if out.FailureThreshold == 0 {
		out.FailureThreshold = 5
	}
	if out.MaxRetries == 0 {
		out.MaxRetries = 3
	}
	if out.RetryBackoff == 0 {
		out.RetryBackoff = 100 * time.Millisecond
	}
	if out.Cooldown == 0 {
		out.Cooldown = 30 * time.Second
	}
	return out
}

type component struct {
	action Action
	state  State
	stats  Statistics
	expiry time.Time
}

// Manager tracks one breaker per registered component.
type Manager struct {
	settings Settings
	logger   *slog.Logger
	clock    func() time.Time

	mu         sync.Mutex
	components map[string]*component
}

// NewManager returns a manager with the given settings. A nil logger
// discards log output.
func NewManager(settings Settings, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		settings:   settings.withDefaults(),
		logger:     logger,
		clock:      time.Now,
		components: make(map[string]*component),
	}
}

// Register installs a recovery action for a component and closes its
// breaker. Re-registering resets the component's state and counters.
func (m *Manager) Register(name string, action Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[name] = &component{action: action, state: StateClosed}
}

// Allow reports whether calls to the component should proceed. An open
// breaker whose cooldown has elapsed transitions to half-open and
// permits one trial call.
func (m *Manager) Allow(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.components[name]
	if !ok {
		return nil
	}
	if c.state == StateOpen {
		if m.clock().Before(c.expiry) {
			return ErrCircuitOpen
		}
		m.setState(name, c, StateHalfOpen)
	}
	return nil
}

// ReportFailure records a collaborator failure, runs the component's
// recovery action with bounded retries, and opens the breaker once
// consecutive failures reach the threshold. A half-open trial failure
// reopens immediately.
func (m *Manager) ReportFailure(ctx context.Context, name string, err error) {
	m.mu.Lock()
	c, ok := m.components[name]
	if !ok {
		m.mu.Unlock()
		m.logger.Warn("failure reported for unregistered component", "component", name, "error", err)
		return
	}
	c.stats.TotalFailures++
	c.stats.ConsecutiveFailures++
	action := c.action
	wasHalfOpen := c.state == StateHalfOpen
	m.logger.Warn("collaborator failure", "component", name, "consecutive", c.stats.ConsecutiveFailures, "error", err)

	if wasHalfOpen {
		m.setState(name, c, StateOpen)
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	// Retries run outside the lock so other components stay usable.
	recovered := false
	if action != nil {
		recovered = m.retry(ctx, name, action)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok = m.components[name]
	if !ok {
		return
	}
	if recovered {
		c.stats.RecoveriesSucceeded++
		c.stats.ConsecutiveFailures = 0
		if c.state != StateClosed {
			m.setState(name, c, StateClosed)
		}
		return
	}
	if c.state == StateClosed && c.stats.ConsecutiveFailures >= m.settings.FailureThreshold {
		m.setState(name, c, StateOpen)
	}
}

// ReportSuccess resets the component's consecutive-failure count. A
// half-open trial success closes the breaker.
func (m *Manager) ReportSuccess(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.components[name]
	if !ok {
		return
	}
	c.stats.ConsecutiveFailures = 0
	if c.state == StateHalfOpen {
		m.setState(name, c, StateClosed)
	}
}

// State returns the component's breaker state, or StateDisabled for an
// unregistered component.
func (m *Manager) State(name string) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.components[name]
	if !ok {
		return StateDisabled
	}
	if c.state == StateOpen && !m.clock().Before(c.expiry) {
		return StateHalfOpen
	}
	return c.state
}

// Statistics returns a copy of the component's counters.
func (m *Manager) Statistics(name string) Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.components[name]
	if !ok {
		return Statistics{State: StateDisabled}
	}
	out := c.stats
	out.State = c.state
	return out
}

// Components returns the registered component names.
func (m *Manager) Components() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.components))
	for name := range m.components {
		names = append(names, name)
	}
	return names
}

func (m *Manager) retry(ctx context.Context, name string, action Action) bool {
	for attempt := 1; attempt <= m.settings.MaxRetries; attempt++ {
		m.mu.Lock()
		c, ok := m.components[name]
		if ok {
			c.stats.RecoveriesAttempted++
		}
		m.mu.Unlock()
		if !ok {
			return false
		}

		if action(ctx) {
			m.logger.Info("component recovered", "component", name, "attempt", attempt)
			return true
		}
		if attempt == m.settings.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(m.settings.RetryBackoff):
		}
	}
	return false
}

// setState transitions a breaker; callers hold m.mu.
func (m *Manager) setState(name string, c *component, state State) {
	if c.state == state {
		return
	}
	prev := c.state
	c.state = state
	if state == StateOpen {
		c.expiry = m.clock().Add(m.settings.Cooldown)
	}
	m.logger.Info("breaker state change", "component", name, "from", prev.String(), "to", state.String())
	if m.settings.OnStateChange != nil {
		m.settings.OnStateChange(name, prev, state)
	}
}
