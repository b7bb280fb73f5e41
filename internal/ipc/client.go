package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/skitterwm/skitter/internal/runtimepath"
)

// Client talks to the daemon over the IPC socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates an IPC client.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// GetStatus retrieves daemon status.
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}
	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// GetBreakers retrieves circuit-breaker statistics.
func (c *Client) GetBreakers() (*BreakersData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetBreakers})
	if err != nil {
		return nil, err
	}
	var data BreakersData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse breakers data: %w", err)
	}
	return &data, nil
}

// GetMonitors retrieves monitor information.
func (c *Client) GetMonitors() (*MonitorsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetMonitors})
	if err != nil {
		return nil, err
	}
	var data MonitorsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse monitors data: %w", err)
	}
	return &data, nil
}

// Pause suspends pushes.
func (c *Client) Pause() error {
	_, err := c.sendRequest(&Request{Command: CommandPause})
	return err
}

// Resume re-enables pushes.
func (c *Client) Resume() error {
	_, err := c.sendRequest(&Request{Command: CommandResume})
	return err
}

// Reload asks the daemon to re-read its config file.
func (c *Client) Reload() (*ReloadData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandReload})
	if err != nil {
		return nil, err
	}
	var data ReloadData
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to parse reload data: %w", err)
		}
	}
	return &data, nil
}

// Restart asks the daemon to restart the engine, promoting any
// restart-required config fields.
func (c *Client) Restart() error {
	_, err := c.sendRequest(&Request{Command: CommandRestart})
	return err
}

// Ping checks if the daemon is responding.
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
