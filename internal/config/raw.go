package config

// Raw config types use pointers so an absent key can be told apart from a
// zero value; BuildEffectiveConfig lays them over the defaults.

type RawAutoHide struct {
	PlainSeconds     *int `yaml:"plain_seconds"`
	DetailedSeconds  *int `yaml:"detailed_seconds"`
	GeneratedSeconds *int `yaml:"generated_seconds"`
}

type RawOverlay struct {
	Width      *int     `yaml:"width"`
	MinHeight  *int     `yaml:"min_height"`
	MaxHeight  *int     `yaml:"max_height"`
	MarginTop  *int     `yaml:"margin_top"`
	Opacity    *float64 `yaml:"opacity"`
	Background *string  `yaml:"background"`
	FontNames  []string `yaml:"font_names"`
}

type RawRecreate struct {
	DelayMS     *int `yaml:"delay_ms"`
	MaxAttempts *int `yaml:"max_attempts"`
}

type RawConfig struct {
	ToggleHotkey          *string      `yaml:"toggle_hotkey"`
	CaptureHotkey         *string      `yaml:"capture_hotkey"`
	BackendURL            *string      `yaml:"backend_url"`
	RequestTimeoutSeconds *int         `yaml:"request_timeout_seconds"`
	HealthIntervalSeconds *int         `yaml:"health_interval_seconds"`
	ProbeIntervalSeconds  *int         `yaml:"probe_interval_seconds"`
	AutoHide              *RawAutoHide `yaml:"auto_hide"`
	Overlay               *RawOverlay  `yaml:"overlay"`
	Recreate              *RawRecreate `yaml:"recreate"`
	Display               *string      `yaml:"display"`
	XAuthority            *string      `yaml:"xauthority"`
	LogLevel              *string      `yaml:"log_level"`
}
