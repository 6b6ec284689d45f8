package config

import (
	"fmt"
)

type ValidationError struct {
	Path string
	File string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.File != "" && e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.File, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

// BuildEffectiveConfig lays a raw (file) config over the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.ToggleHotkey != nil {
		cfg.ToggleHotkey = *raw.ToggleHotkey
	}
	if raw.CaptureHotkey != nil {
		cfg.CaptureHotkey = *raw.CaptureHotkey
	}
	if raw.BackendURL != nil {
		cfg.BackendURL = *raw.BackendURL
	}
	if raw.RequestTimeoutSeconds != nil {
		cfg.RequestTimeoutSeconds = *raw.RequestTimeoutSeconds
	}
	if raw.HealthIntervalSeconds != nil {
		cfg.HealthIntervalSeconds = *raw.HealthIntervalSeconds
	}
	if raw.ProbeIntervalSeconds != nil {
		cfg.ProbeIntervalSeconds = *raw.ProbeIntervalSeconds
	}

	if raw.AutoHide != nil {
		if raw.AutoHide.PlainSeconds != nil {
			cfg.AutoHide.PlainSeconds = *raw.AutoHide.PlainSeconds
		}
		if raw.AutoHide.DetailedSeconds != nil {
			cfg.AutoHide.DetailedSeconds = *raw.AutoHide.DetailedSeconds
		}
		if raw.AutoHide.GeneratedSeconds != nil {
			cfg.AutoHide.GeneratedSeconds = *raw.AutoHide.GeneratedSeconds
		}
	}

	if raw.Overlay != nil {
		if raw.Overlay.Width != nil {
			cfg.Overlay.Width = *raw.Overlay.Width
		}
		if raw.Overlay.MinHeight != nil {
			cfg.Overlay.MinHeight = *raw.Overlay.MinHeight
		}
		if raw.Overlay.MaxHeight != nil {
			cfg.Overlay.MaxHeight = *raw.Overlay.MaxHeight
		}
		if raw.Overlay.MarginTop != nil {
			cfg.Overlay.MarginTop = *raw.Overlay.MarginTop
		}
		if raw.Overlay.Opacity != nil {
			cfg.Overlay.Opacity = *raw.Overlay.Opacity
		}
		if raw.Overlay.Background != nil {
			cfg.Overlay.Background = *raw.Overlay.Background
		}
		if raw.Overlay.FontNames != nil {
			cfg.Overlay.FontNames = raw.Overlay.FontNames
		}
	}

	if raw.Recreate != nil {
		if raw.Recreate.DelayMS != nil {
			cfg.Recreate.DelayMS = *raw.Recreate.DelayMS
		}
		if raw.Recreate.MaxAttempts != nil {
			cfg.Recreate.MaxAttempts = *raw.Recreate.MaxAttempts
		}
	}

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}

	return cfg
}
