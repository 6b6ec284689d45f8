package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/glance/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
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

// SetTimeout overrides the request timeout. SEND waits on the backend, which
// can legitimately take longer than control commands.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// Toggle sends a TOGGLE command to the daemon
func (c *Client) Toggle() error {
	_, err := c.sendRequest(&Request{Command: CommandToggle})
	return err
}

// Show sends a SHOW command to the daemon
func (c *Client) Show() error {
	_, err := c.sendRequest(&Request{Command: CommandShow})
	return err
}

// Hide sends a HIDE command to the daemon
func (c *Client) Hide() error {
	_, err := c.sendRequest(&Request{Command: CommandHide})
	return err
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}

// GetStatus retrieves daemon status
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

// Send forwards a command to the backend through the daemon and returns the
// result that was displayed on the overlay.
func (c *Client) Send(command string) (*ResultData, error) {
	payload, err := json.Marshal(SendPayload{Command: command})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal send payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandSend, Payload: payload})
	if err != nil {
		return nil, err
	}

	var result ResultData
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse result data: %w", err)
	}

	return &result, nil
}

// Confirm answers a held-back command identified by its cache key.
func (c *Client) Confirm(cacheKey string, confirmed bool) (*ResultData, error) {
	payload, err := json.Marshal(ConfirmPayload{CacheKey: cacheKey, Confirmed: confirmed})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal confirm payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandConfirm, Payload: payload})
	if err != nil {
		return nil, err
	}

	var result ResultData
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse result data: %w", err)
	}

	return &result, nil
}

// Capture asks the daemon to screenshot the active monitor.
func (c *Client) Capture() (*CaptureData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandCapture})
	if err != nil {
		return nil, err
	}

	var data CaptureData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse capture data: %w", err)
	}

	return &data, nil
}

// GetContext retrieves the conversation context window.
func (c *Client) GetContext() (*ContextData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetContext})
	if err != nil {
		return nil, err
	}

	var data ContextData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse context data: %w", err)
	}

	return &data, nil
}

// ClearContext clears the conversation context window.
func (c *Client) ClearContext() error {
	_, err := c.sendRequest(&Request{Command: CommandClearContext})
	return err
}

// GetHealth retrieves backend health; verbose adds capabilities and recent
// backend log lines.
func (c *Client) GetHealth(verbose bool, logLimit int) (*HealthData, error) {
	payload, err := json.Marshal(HealthPayload{Verbose: verbose, LogLimit: logLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal health payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandGetHealth, Payload: payload})
	if err != nil {
		return nil, err
	}

	var data HealthData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse health data: %w", err)
	}

	return &data, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
