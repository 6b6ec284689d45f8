package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// AutoHide holds per-response-kind auto-hide delays, in seconds.
// Longer responses get longer delays so they can actually be read.
type AutoHide struct {
	PlainSeconds     int `yaml:"plain_seconds"`
	DetailedSeconds  int `yaml:"detailed_seconds"`
	GeneratedSeconds int `yaml:"generated_seconds"`
}

// Overlay configures the command surface geometry and looks.
type Overlay struct {
	Width      int      `yaml:"width"`
	MinHeight  int      `yaml:"min_height"`
	MaxHeight  int      `yaml:"max_height"`
	MarginTop  int      `yaml:"margin_top"` // distance from the top of the work area
	Opacity    float64  `yaml:"opacity"`    // 0 < opacity <= 1; needs a compositor to take effect
	Background string   `yaml:"background"` // hex color, e.g. "#2e3440"
	FontNames  []string `yaml:"font_names"` // tried in order
}

// Recreate configures the surface rebuild policy after a crash/destroy.
type Recreate struct {
	DelayMS     int `yaml:"delay_ms"`
	MaxAttempts int `yaml:"max_attempts"`
}

// Config holds the application configuration.
type Config struct {
	ToggleHotkey          string   `yaml:"toggle_hotkey"`
	CaptureHotkey         string   `yaml:"capture_hotkey"`
	BackendURL            string   `yaml:"backend_url"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
	HealthIntervalSeconds int      `yaml:"health_interval_seconds"`
	ProbeIntervalSeconds  int      `yaml:"probe_interval_seconds"`
	AutoHide              AutoHide `yaml:"auto_hide"`
	Overlay               Overlay  `yaml:"overlay"`
	Recreate              Recreate `yaml:"recreate"`
	Display               string   `yaml:"display,omitempty"`
	XAuthority            string   `yaml:"xauthority,omitempty"`
	LogLevel              string   `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		ToggleHotkey:          "Control-space",
		CaptureHotkey:         "Control-Shift-s",
		BackendURL:            "http://127.0.0.1:8888",
		RequestTimeoutSeconds: 30,
		HealthIntervalSeconds: 10,
		ProbeIntervalSeconds:  5,
		AutoHide: AutoHide{
			PlainSeconds:     5,
			DetailedSeconds:  12,
			GeneratedSeconds: 18,
		},
		Overlay: Overlay{
			Width:      560,
			MinHeight:  96,
			MaxHeight:  480,
			MarginTop:  48,
			Opacity:    0.95,
			Background: "#2e3440",
			FontNames:  []string{"fixed", "9x15", "8x13", "6x13"},
		},
		Recreate: Recreate{
			DelayMS:     1000,
			MaxAttempts: 3,
		},
		LogLevel: "info",
	}
}

// RequestTimeout returns the backend request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// HealthInterval returns the backend health poll interval as a duration.
func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalSeconds) * time.Second
}

// ProbeInterval returns the surface liveness probe interval as a duration.
func (c *Config) ProbeInterval() time.Duration {
	return time.Duration(c.ProbeIntervalSeconds) * time.Second
}

// RecreateDelay returns the delay before a surface rebuild attempt.
func (c *Config) RecreateDelay() time.Duration {
	return time.Duration(c.Recreate.DelayMS) * time.Millisecond
}

// BackgroundPixel returns the overlay background as an X pixel value.
// The color is validated at load time; a parse failure here falls back
// to the built-in default.
func (o Overlay) BackgroundPixel() uint32 {
	pixel, err := parseHexColor(o.Background)
	if err != nil {
		pixel, _ = parseHexColor(DefaultConfig().Overlay.Background)
	}
	return pixel
}

func parseHexColor(s string) (uint32, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(raw) != 6 {
		return 0, fmt.Errorf("color %q must be 6 hex digits", s)
	}
	v, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q is not valid hex: %w", s, err)
	}
	return uint32(v), nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.ToggleHotkey == "" {
		return &ValidationError{Path: "toggle_hotkey", Err: fmt.Errorf("toggle_hotkey is required")}
	}
	if strings.TrimSpace(c.BackendURL) == "" {
		return &ValidationError{Path: "backend_url", Err: fmt.Errorf("backend_url is required")}
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Path: "backend_url", Err: fmt.Errorf("backend_url must be an http(s) URL")}
	}
	if c.RequestTimeoutSeconds <= 0 {
		return &ValidationError{Path: "request_timeout_seconds", Err: fmt.Errorf("request_timeout_seconds must be > 0")}
	}
	if c.HealthIntervalSeconds <= 0 {
		return &ValidationError{Path: "health_interval_seconds", Err: fmt.Errorf("health_interval_seconds must be > 0")}
	}
	if c.ProbeIntervalSeconds <= 0 {
		return &ValidationError{Path: "probe_interval_seconds", Err: fmt.Errorf("probe_interval_seconds must be > 0")}
	}

	if err := validateAutoHide(&c.AutoHide); err != nil {
		return err
	}
	if err := validateOverlay(&c.Overlay); err != nil {
		return err
	}

	if c.Recreate.DelayMS < 100 || c.Recreate.DelayMS > 10000 {
		return &ValidationError{Path: "recreate.delay_ms", Err: fmt.Errorf("delay_ms must be between 100 and 10000")}
	}
	if c.Recreate.MaxAttempts < 1 || c.Recreate.MaxAttempts > 10 {
		return &ValidationError{Path: "recreate.max_attempts", Err: fmt.Errorf("max_attempts must be between 1 and 10")}
	}

	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}

	return nil
}

func validateAutoHide(a *AutoHide) error {
	if a.PlainSeconds <= 0 || a.PlainSeconds > 600 {
		return &ValidationError{Path: "auto_hide.plain_seconds", Err: fmt.Errorf("plain_seconds must be between 1 and 600")}
	}
	if a.DetailedSeconds <= 0 || a.DetailedSeconds > 600 {
		return &ValidationError{Path: "auto_hide.detailed_seconds", Err: fmt.Errorf("detailed_seconds must be between 1 and 600")}
	}
	if a.GeneratedSeconds <= 0 || a.GeneratedSeconds > 600 {
		return &ValidationError{Path: "auto_hide.generated_seconds", Err: fmt.Errorf("generated_seconds must be between 1 and 600")}
	}
	return nil
}

func validateOverlay(o *Overlay) error {
	if o.Width < 200 {
		return &ValidationError{Path: "overlay.width", Err: fmt.Errorf("width must be >= 200")}
	}
	if o.MinHeight < 40 {
		return &ValidationError{Path: "overlay.min_height", Err: fmt.Errorf("min_height must be >= 40")}
	}
	if o.MaxHeight < o.MinHeight {
		return &ValidationError{Path: "overlay.max_height", Err: fmt.Errorf("max_height must be >= min_height")}
	}
	if o.MarginTop < 0 {
		return &ValidationError{Path: "overlay.margin_top", Err: fmt.Errorf("margin_top must be >= 0")}
	}
	if o.Opacity <= 0 || o.Opacity > 1 {
		return &ValidationError{Path: "overlay.opacity", Err: fmt.Errorf("opacity must be in (0, 1]")}
	}
	if _, err := parseHexColor(o.Background); err != nil {
		return &ValidationError{Path: "overlay.background", Err: err}
	}
	if len(o.FontNames) == 0 {
		return &ValidationError{Path: "overlay.font_names", Err: fmt.Errorf("font_names must not be empty")}
	}
	for _, name := range o.FontNames {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "overlay.font_names", Err: fmt.Errorf("font_names contains an empty name")}
		}
	}
	return nil
}

func (c *Config) validationWarnings() []string {
	if c == nil {
		return nil
	}

	var warnings []string

	// Recommended reading-time windows; configurable but worth flagging.
	if c.AutoHide.DetailedSeconds < 10 || c.AutoHide.DetailedSeconds > 15 {
		warnings = append(warnings, fmt.Sprintf("auto_hide.detailed_seconds %d is outside the recommended 10-15s window", c.AutoHide.DetailedSeconds))
	}
	if c.AutoHide.GeneratedSeconds < 15 || c.AutoHide.GeneratedSeconds > 20 {
		warnings = append(warnings, fmt.Sprintf("auto_hide.generated_seconds %d is outside the recommended 15-20s window", c.AutoHide.GeneratedSeconds))
	}
	if c.CaptureHotkey == "" {
		warnings = append(warnings, "capture_hotkey is empty; screen capture binding disabled")
	}

	return warnings
}
