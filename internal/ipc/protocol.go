// Package ipc is the daemon's control surface: a line-delimited JSON
// protocol over a unix socket, used by the CLI subcommands.
package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType identifies an IPC command.
type CommandType string

const (
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetBreakers CommandType = "GET_BREAKERS"
	CommandGetMonitors CommandType = "GET_MONITORS"
	CommandPause       CommandType = "PAUSE"
	CommandResume      CommandType = "RESUME"
	CommandReload      CommandType = "RELOAD"
	CommandRestart     CommandType = "RESTART"
)

// Request is an IPC request from client to server.
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is an IPC response from server to client.
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is returned by GET_STATUS.
type StatusData struct {
	EngineState    string  `json:"engine_state"`
	Paused         bool    `json:"paused"`
	TrackedWindows int     `json:"tracked_windows"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
	PollIntervalMs int     `json:"poll_interval_ms"`
	Ticks          uint64  `json:"ticks"`
	Pushes         uint64  `json:"pushes"`
	AvgTickMicros  int64   `json:"avg_tick_micros"`
	CPUPercent     float64 `json:"cpu_percent"`
}

// BreakerInfo is one component's circuit-breaker view.
type BreakerInfo struct {
	Component           string `json:"component"`
	State               string `json:"state"`
	TotalFailures       uint64 `json:"total_failures"`
	ConsecutiveFailures uint64 `json:"consecutive_failures"`
	RecoveriesAttempted uint64 `json:"recoveries_attempted"`
	RecoveriesSucceeded uint64 `json:"recoveries_succeeded"`
}

// BreakersData is returned by GET_BREAKERS.
type BreakersData struct {
	Breakers []BreakerInfo `json:"breakers"`
}

// MonitorInfo describes one monitor.
type MonitorInfo struct {
	StableID string  `json:"stable_id"`
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Scale    float64 `json:"scale"`
	Primary  bool    `json:"primary"`
}

// MonitorsData is returned by GET_MONITORS.
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// ReloadData is returned by RELOAD.
type ReloadData struct {
	Applied        []string `json:"applied"`
	PendingRestart []string `json:"pending_restart"`
}

// NewOKResponse creates a successful response with optional data.
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}
	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message.
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes.
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
