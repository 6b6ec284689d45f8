package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/glance/internal/bridge"
	"github.com/1broseidon/glance/internal/overlay"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandToggle       CommandType = "TOGGLE"
	CommandShow         CommandType = "SHOW"
	CommandHide         CommandType = "HIDE"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandSend         CommandType = "SEND"
	CommandConfirm      CommandType = "CONFIRM"
	CommandCapture      CommandType = "CAPTURE"
	CommandGetContext   CommandType = "GET_CONTEXT"
	CommandClearContext CommandType = "CLEAR_CONTEXT"
	CommandGetHealth    CommandType = "GET_HEALTH"
	CommandReload       CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning bool           `json:"daemon_running"`
	Overlay       overlay.Status `json:"overlay"`
	BackendURL    string         `json:"backend_url"`
	BackendHealth string         `json:"backend_health"`
	TurnCount     int            `json:"turn_count"`
	UptimeSeconds int64          `json:"uptime_seconds"`
}

// SendPayload represents the payload for the SEND command
type SendPayload struct {
	Command string `json:"command"`
}

// ConfirmPayload represents the payload for the CONFIRM command
type ConfirmPayload struct {
	CacheKey  string `json:"cache_key"`
	Confirmed bool   `json:"confirmed"`
}

// ResultData carries a backend result back to the client
type ResultData struct {
	Success              bool   `json:"success"`
	Result               string `json:"result"`
	Kind                 string `json:"kind"`
	Remedy               string `json:"remedy,omitempty"`
	RequiresConfirmation bool   `json:"requires_confirmation,omitempty"`
	CacheKey             string `json:"cache_key,omitempty"`
}

// ResultDataFrom maps a bridge result onto the wire shape.
func ResultDataFrom(res bridge.Result) ResultData {
	return ResultData{
		Success:              res.Success,
		Result:               res.Text,
		Kind:                 string(res.Kind),
		Remedy:               res.Remedy,
		RequiresConfirmation: res.RequiresConfirmation,
		CacheKey:             res.CacheKey,
	}
}

// CaptureData represents the data returned by CAPTURE
type CaptureData struct {
	Path string `json:"path"`
}

// ContextData represents the data returned by GET_CONTEXT
type ContextData struct {
	Turns []bridge.Turn `json:"turns"`
}

// HealthPayload represents the payload for GET_HEALTH
type HealthPayload struct {
	Verbose  bool `json:"verbose,omitempty"`
	LogLimit int  `json:"log_limit,omitempty"`
	ProbeNow bool `json:"probe_now,omitempty"`
}

// HealthData represents the data returned by GET_HEALTH
type HealthData struct {
	Status       string   `json:"status"`
	BackendURL   string   `json:"backend_url"`
	Capabilities []string `json:"capabilities,omitempty"`
	Logs         []string `json:"logs,omitempty"`
}

// NewOKResponse creates a successful response with optional data
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

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
