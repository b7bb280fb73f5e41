package config

import "fmt"

// ErrConfigurationInvalid wraps a validation failure during hot-swap;
// the previous configuration stays in effect.
type ErrConfigurationInvalid struct {
	Err error
}

func (e *ErrConfigurationInvalid) Error() string {
	return fmt.Sprintf("configuration rejected: %v", e.Err)
}

func (e *ErrConfigurationInvalid) Unwrap() error { return e.Err }

// ApplyResult lists which fields of an incoming config took effect
// immediately and which wait for an engine restart.
type ApplyResult struct {
	Applied        []string
	PendingRestart []string
}

// Changed reports whether the swap changed anything at all.
func (r ApplyResult) Changed() bool {
	return len(r.Applied) > 0 || len(r.PendingRestart) > 0
}

// Plan validates the incoming config against the live one and
// classifies every changed field as hot-swappable or restart-required.
// The field sets are fixed: proximity, hover, CTRL-override, animation,
// wrap and log level apply live; poll interval, apply-to-all-windows,
// edge buffer and recovery tuning wait for restart. Invalid configs are
// rejected wholesale.
func Plan(live, incoming *Config) (ApplyResult, error) {
	if err := incoming.Validate(); err != nil {
		return ApplyResult{}, &ErrConfigurationInvalid{Err: err}
	}

	var result ApplyResult
	hot := func(name string, changed bool) {
		if changed {
			result.Applied = append(result.Applied, name)
		}
	}
	cold := func(name string, changed bool) {
		if changed {
			result.PendingRestart = append(result.PendingRestart, name)
		}
	}

	hot("proximity.threshold_px", live.Proximity.ThresholdPx != incoming.Proximity.ThresholdPx)
	hot("proximity.push_distance_px", live.Proximity.PushDistancePx != incoming.Proximity.PushDistancePx)
	hot("hover.enabled", live.Hover.Enabled != incoming.Hover.Enabled)
	hot("hover.timeout_ms", live.Hover.TimeoutMs != incoming.Hover.TimeoutMs)
	hot("animation.enabled", live.Animation.Enabled != incoming.Animation.Enabled)
	hot("animation.duration_ms", live.Animation.DurationMs != incoming.Animation.DurationMs)
	hot("animation.easing", live.Animation.Easing != incoming.Animation.Easing)
	hot("wrap.enabled", live.Wrap.Enabled != incoming.Wrap.Enabled)
	hot("wrap.mode", live.Wrap.Mode != incoming.Wrap.Mode)
	hot("wrap.respect_work_area", live.Wrap.RespectWorkArea != incoming.Wrap.RespectWorkArea)
	hot("engine.ctrl_override", live.Engine.CtrlOverride != incoming.Engine.CtrlOverride)
	hot("log_level", live.LogLevel != incoming.LogLevel)

	cold("engine.poll_interval_ms", live.Engine.PollIntervalMs != incoming.Engine.PollIntervalMs)
	cold("engine.apply_to_all_windows", live.Engine.ApplyToAllWindows != incoming.Engine.ApplyToAllWindows)
	cold("engine.edge_buffer_px", live.Engine.EdgeBufferPx != incoming.Engine.EdgeBufferPx)
	cold("recovery.failure_threshold", live.Recovery.FailureThreshold != incoming.Recovery.FailureThreshold)
	cold("recovery.max_retries", live.Recovery.MaxRetries != incoming.Recovery.MaxRetries)
	cold("recovery.retry_backoff_ms", live.Recovery.RetryBackoffMs != incoming.Recovery.RetryBackoffMs)
	cold("recovery.cooldown_ms", live.Recovery.CooldownMs != incoming.Recovery.CooldownMs)

	return result, nil
}

// Merge builds the config the engine should run with after a hot swap:
// hot-swappable fields come from incoming, restart-required fields keep
// their live values until an explicit restart.
func Merge(live, incoming *Config) *Config {
	out := incoming.Clone()
	out.Engine.PollIntervalMs = live.Engine.PollIntervalMs
	out.Engine.ApplyToAllWindows = live.Engine.ApplyToAllWindows
	out.Engine.EdgeBufferPx = live.Engine.EdgeBufferPx
	out.Recovery = live.Recovery
	return out
}
