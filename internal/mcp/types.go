package mcp

// ToggleInput is the input for the overlay_toggle tool.
type ToggleInput struct{}

// ToggleOutput is the output for the overlay_toggle tool.
type ToggleOutput struct {
	State   string `json:"state"`
	Visible bool   `json:"visible"`
}

// StatusInput is the input for the overlay_status tool.
type StatusInput struct{}

// StatusOutput is the output for the overlay_status tool.
type StatusOutput struct {
	State         string `json:"state"`
	Visible       bool   `json:"visible"`
	TimerPending  bool   `json:"timer_pending"`
	CommandActive bool   `json:"command_active"`
	BackendURL    string `json:"backend_url"`
	BackendHealth string `json:"backend_health"`
	TurnCount     int    `json:"turn_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// SendInput is the input for the overlay_send tool.
type SendInput struct {
	Command  string `json:"command,omitempty" jsonschema:"Natural-language command to run through the backend"`
	CacheKey string `json:"cache_key,omitempty" jsonschema:"Cache key from a previous result that required confirmation. When set, answers that held-back command instead of sending a new one."`
	Confirm  *bool  `json:"confirm,omitempty" jsonschema:"Required with cache_key: true approves the held-back command, false declines it"`
}

// SendOutput is the output for the overlay_send tool.
type SendOutput struct {
	Success              bool   `json:"success"`
	Result               string `json:"result"`
	Kind                 string `json:"kind"`
	Remedy               string `json:"remedy,omitempty"`
	RequiresConfirmation bool   `json:"requires_confirmation,omitempty"`
	CacheKey             string `json:"cache_key,omitempty"`
}

// ContextInput is the input for the overlay_context tool.
type ContextInput struct {
	Clear bool `json:"clear,omitempty" jsonschema:"When true, clear the conversation context instead of listing it"`
}

// ContextTurn is one conversation exchange in overlay_context output.
type ContextTurn struct {
	Command string `json:"command"`
	Result  string `json:"result"`
	Success bool   `json:"success"`
}

// ContextOutput is the output for the overlay_context tool.
type ContextOutput struct {
	Turns   []ContextTurn `json:"turns,omitempty"`
	Cleared bool          `json:"cleared,omitempty"`
}

// CaptureInput is the input for the overlay_capture tool.
type CaptureInput struct{}

// CaptureOutput is the output for the overlay_capture tool.
type CaptureOutput struct {
	Path string `json:"path"`
}
