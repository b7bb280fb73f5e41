package ipc

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/skitterwm/skitter/internal/engine"
	"github.com/skitterwm/skitter/internal/monitors"
	"github.com/skitterwm/skitter/internal/recovery"
	"github.com/skitterwm/skitter/internal/runtimepath"
)

// Reloader re-reads configuration from disk and applies it to the
// engine. Implemented by the daemon.
type Reloader interface {
	Reload() (applied, pendingRestart []string, err error)
}

// Server handles IPC requests from CLI clients.
type Server struct {
	socketPath string
	listener   net.Listener
	logger     *slog.Logger

	engine   *engine.Engine
	recovery *recovery.Manager
	registry *monitors.Registry
	reloader Reloader

	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates an IPC server wired to the running daemon.
func NewServer(eng *engine.Engine, rec *recovery.Manager, registry *monitors.Registry, reloader Reloader, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove a stale socket from a previous run.
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		logger:     logger,
		engine:     eng,
		recovery:   rec,
		registry:   registry,
		reloader:   reloader,
		startTime:  time.Now(),
	}, nil
}

// Start begins listening for IPC connections.
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("ipc server listening", "socket", s.socketPath)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("ipc accept error", "error", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("ipc read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)
	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal ipc response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send ipc response", "error", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetBreakers:
		return s.handleGetBreakers()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandPause:
		s.engine.Pause()
		resp, _ := NewOKResponse(nil)
		return resp
	case CommandResume:
		s.engine.Resume()
		resp, _ := NewOKResponse(nil)
		return resp
	case CommandReload:
		return s.handleReload()
	case CommandRestart:
		return s.handleRestart()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	cfg := s.engine.Config()
	sample := s.engine.LastSample()
	status := StatusData{
		EngineState:    s.engine.State().String(),
		Paused:         s.engine.Paused(),
		TrackedWindows: s.engine.TrackedWindows(),
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		PollIntervalMs: cfg.Engine.PollIntervalMs,
		Ticks:          sample.Ticks,
		Pushes:         sample.Pushes,
		AvgTickMicros:  sample.AvgTickDuration.Microseconds(),
		CPUPercent:     sample.CPUPercent,
	}
	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetBreakers() *Response {
	names := s.recovery.Components()
	sort.Strings(names)

	infos := make([]BreakerInfo, 0, len(names))
	for _, name := range names {
		stats := s.recovery.Statistics(name)
		infos = append(infos, BreakerInfo{
			Component:           name,
			State:               s.recovery.State(name).String(),
			TotalFailures:       stats.TotalFailures,
			ConsecutiveFailures: stats.ConsecutiveFailures,
			RecoveriesAttempted: stats.RecoveriesAttempted,
			RecoveriesSucceeded: stats.RecoveriesSucceeded,
		})
	}
	resp, _ := NewOKResponse(BreakersData{Breakers: infos})
	return resp
}

func (s *Server) handleGetMonitors() *Response {
	descs, err := s.registry.All()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}

	infos := make([]MonitorInfo, len(descs))
	for i, d := range descs {
		infos[i] = MonitorInfo{
			StableID: d.StableID,
			Name:     d.Name,
			X:        d.Bounds.X,
			Y:        d.Bounds.Y,
			Width:    d.Bounds.Width,
			Height:   d.Bounds.Height,
			Scale:    d.Scale.X,
			Primary:  d.Primary,
		}
	}
	resp, _ := NewOKResponse(MonitorsData{Monitors: infos})
	return resp
}

func (s *Server) handleReload() *Response {
	s.logger.Info("ipc: reload requested")
	applied, pending, err := s.reloader.Reload()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	resp, _ := NewOKResponse(ReloadData{Applied: applied, PendingRestart: pending})
	return resp
}

func (s *Server) handleRestart() *Response {
	s.logger.Info("ipc: engine restart requested")
	if err := s.engine.Restart(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to restart engine: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
