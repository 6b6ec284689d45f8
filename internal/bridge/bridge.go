package bridge

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// contextWindow caps how many conversation turns the backend receives with
// each command. The backend keeps the same window on its side.
const contextWindow = 10

// ResponseKind classifies a backend response for display purposes, mainly
// how long the auto-hide timer should run.
type ResponseKind string

const (
	// KindPlain is a short single-line answer.
	KindPlain ResponseKind = "plain"
	// KindDetailed is a multi-line or long answer.
	KindDetailed ResponseKind = "detailed"
	// KindGenerated is an AI-generated answer, the slowest to read.
	KindGenerated ResponseKind = "generated"
)

// Turn is one conversation exchange, ordered oldest first.
type Turn struct {
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
	Result    string    `json:"result"`
	Success   bool      `json:"success"`
}

// Result is a backend response mapped for display.
type Result struct {
	Success bool         `json:"success"`
	Text    string       `json:"text"`
	Kind    ResponseKind `json:"kind"`
	// Remedy is a short suggestion shown alongside failures.
	Remedy string `json:"remedy,omitempty"`
	// RequiresConfirmation marks a command the backend held back pending an
	// explicit yes; CacheKey identifies it for Confirm.
	RequiresConfirmation bool   `json:"requires_confirmation,omitempty"`
	CacheKey             string `json:"cache_key,omitempty"`
}

// DisplayText returns the text to render, with the remedy appended for
// failures so the user sees what to do next.
func (r Result) DisplayText() string {
	if r.Success || r.Remedy == "" {
		return r.Text
	}
	if r.Text == "" {
		return r.Remedy
	}
	return r.Text + "\n" + r.Remedy
}

// commandRequest is the POST /command body.
type commandRequest struct {
	Command string `json:"command"`
	Context []Turn `json:"context"`
}

// commandResponse is the POST /command reply.
type commandResponse struct {
	Success      bool           `json:"success"`
	Result       string         `json:"result"`
	Context      []Turn         `json:"context"`
	Metadata     map[string]any `json:"metadata"`
	IsAIResponse bool           `json:"is_ai_response"`
	ResponseType string         `json:"response_type"`
	Error        string         `json:"error"`
}

// Client talks to the backend command process over HTTP. Command execution
// is synchronous on the calling goroutine; use Submit for fire-and-callback
// delivery into an event handler.
type Client struct {
	http      *resty.Client
	baseURL   string
	sessionID string
	logger    *slog.Logger

	mu     sync.Mutex
	turns  []Turn
	health HealthStatus
}

// NewClient creates a bridge client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:      httpClient,
		baseURL:   strings.TrimRight(baseURL, "/"),
		sessionID: uuid.NewString(),
		logger:    logger,
		health:    HealthUnknown,
	}
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetTimeout updates the per-request timeout. Used on config reload.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.http.SetTimeout(timeout)
}

// Turns returns a copy of the current conversation context.
func (c *Client) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Execute sends a command with the current conversation context and blocks
// until the backend answers. Transport failures come back as a failure
// Result with a remedy string, never as an error: the caller always has
// something to display.
func (c *Client) Execute(command string) Result {
	c.mu.Lock()
	ctxTurns := make([]Turn, len(c.turns))
	copy(ctxTurns, c.turns)
	c.mu.Unlock()

	var reply commandResponse
	resp, err := c.http.R().
		SetBody(commandRequest{Command: command, Context: ctxTurns}).
		SetResult(&reply).
		SetError(&reply).
		Post("/command")
	if err != nil {
		c.setHealth(HealthUnreachable)
		c.logger.Warn("backend request failed", "error", err)
		return c.unreachableResult()
	}

	c.setHealth(HealthHealthy)

	if resp.IsError() && reply.Result == "" && reply.Error == "" {
		return Result{
			Success: false,
			Text:    fmt.Sprintf("backend returned %s", resp.Status()),
			Kind:    KindPlain,
			Remedy:  "Check the backend logs for details.",
		}
	}

	result := mapResponse(reply)
	c.recordTurn(command, result)
	// The backend echoes the updated window; adopt it wholesale when present.
	if reply.Context != nil {
		c.setTurns(reply.Context)
	}
	return result
}

// Submit runs Execute on its own goroutine and delivers the result to done.
// The caller never blocks; the overlay stays responsive while the command is
// in flight.
func (c *Client) Submit(command string, done func(Result)) {
	go func() {
		done(c.Execute(command))
	}()
}

// Confirm answers a held-back dangerous command identified by cacheKey.
func (c *Client) Confirm(cacheKey string, confirmed bool) Result {
	var reply commandResponse
	_, err := c.http.R().
		SetBody(map[string]any{
			"cache_key": cacheKey,
			"confirmed": confirmed,
		}).
		SetResult(&reply).
		SetError(&reply).
		Post("/command/confirm")
	if err != nil {
		c.setHealth(HealthUnreachable)
		return c.unreachableResult()
	}

	c.setHealth(HealthHealthy)
	result := mapResponse(reply)
	if reply.Context != nil {
		c.setTurns(reply.Context)
	}
	return result
}

// ClearContext drops the conversation window here and on the backend.
func (c *Client) ClearContext() error {
	c.mu.Lock()
	c.turns = nil
	c.mu.Unlock()

	_, err := c.http.R().
		SetBody(map[string]string{"session_id": c.sessionID}).
		Post("/context/clear")
	if err != nil {
		return fmt.Errorf("clear backend context: %w", err)
	}
	return nil
}

// Capabilities fetches the backend's advertised capability list.
func (c *Client) Capabilities() ([]string, error) {
	var reply struct {
		Capabilities []string `json:"capabilities"`
	}
	resp, err := c.http.R().SetResult(&reply).Get("/capabilities")
	if err != nil {
		return nil, fmt.Errorf("fetch capabilities: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch capabilities: backend returned %s", resp.Status())
	}
	return reply.Capabilities, nil
}

// Logs fetches up to limit recent backend log lines.
func (c *Client) Logs(limit int) ([]string, error) {
	var reply struct {
		Logs []string `json:"logs"`
	}
	resp, err := c.http.R().
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetResult(&reply).
		Get("/logs")
	if err != nil {
		return nil, fmt.Errorf("fetch logs: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch logs: backend returned %s", resp.Status())
	}
	return reply.Logs, nil
}

func (c *Client) unreachableResult() Result {
	return Result{
		Success: false,
		Text:    "Backend is not reachable.",
		Kind:    KindPlain,
		Remedy:  fmt.Sprintf("Check that the backend process is running at %s.", c.baseURL),
	}
}

func (c *Client) recordTurn(command string, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = append(c.turns, Turn{
		Timestamp: time.Now(),
		Command:   command,
		Result:    result.Text,
		Success:   result.Success,
	})
	if len(c.turns) > contextWindow {
		c.turns = c.turns[len(c.turns)-contextWindow:]
	}
}

func (c *Client) setTurns(turns []Turn) {
	if len(turns) > contextWindow {
		turns = turns[len(turns)-contextWindow:]
	}
	c.mu.Lock()
	c.turns = turns
	c.mu.Unlock()
}

// mapResponse converts a raw backend reply into a display Result.
func mapResponse(reply commandResponse) Result {
	text := reply.Result
	if text == "" && reply.Error != "" {
		text = reply.Error
	}

	result := Result{
		Success: reply.Success,
		Text:    text,
		Kind:    ClassifyKind(reply.IsAIResponse, text),
	}

	if meta := reply.Metadata; meta != nil {
		if v, ok := meta["requires_confirmation"].(bool); ok && v {
			result.RequiresConfirmation = true
			if key, ok := meta["cache_key"].(string); ok {
				result.CacheKey = key
			}
		}
		if remedy, ok := meta["remedy"].(string); ok {
			result.Remedy = remedy
		}
	}

	return result
}

// ClassifyKind picks the response kind for display: AI answers are the
// slowest to read, multi-line or long answers next, everything else plain.
func ClassifyKind(isAI bool, text string) ResponseKind {
	if isAI {
		return KindGenerated
	}
	if strings.Contains(text, "\n") || len(text) > 160 {
		return KindDetailed
	}
	return KindPlain
}
