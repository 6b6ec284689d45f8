package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.ToggleHotkey != "Control-space" {
		t.Fatalf("expected toggle_hotkey Control-space, got %q", cfg.ToggleHotkey)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BackendURL != "http://127.0.0.1:8888" {
		t.Fatalf("expected default backend_url, got %q", cfg.BackendURL)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("# empty\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AutoHide.PlainSeconds != 5 {
		t.Fatalf("expected default plain_seconds 5, got %d", cfg.AutoHide.PlainSeconds)
	}
	if cfg.Overlay.Width != 560 {
		t.Fatalf("expected default overlay width 560, got %d", cfg.Overlay.Width)
	}
}

func TestLoadFromPath_OverridesApplyOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := strings.Join([]string{
		"toggle_hotkey: \"Mod4-space\"",
		"backend_url: \"http://127.0.0.1:9999\"",
		"auto_hide:",
		"  plain_seconds: 8",
		"overlay:",
		"  width: 640",
		"  opacity: 0.8",
		"recreate:",
		"  delay_ms: 500",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ToggleHotkey != "Mod4-space" {
		t.Fatalf("expected toggle_hotkey Mod4-space, got %q", cfg.ToggleHotkey)
	}
	if cfg.BackendURL != "http://127.0.0.1:9999" {
		t.Fatalf("expected overridden backend_url, got %q", cfg.BackendURL)
	}
	if cfg.AutoHide.PlainSeconds != 8 {
		t.Fatalf("expected plain_seconds 8, got %d", cfg.AutoHide.PlainSeconds)
	}
	// Untouched siblings keep their defaults.
	if cfg.AutoHide.DetailedSeconds != 12 {
		t.Fatalf("expected detailed_seconds default 12, got %d", cfg.AutoHide.DetailedSeconds)
	}
	if cfg.Overlay.Width != 640 {
		t.Fatalf("expected overlay width 640, got %d", cfg.Overlay.Width)
	}
	if cfg.Overlay.MinHeight != 96 {
		t.Fatalf("expected overlay min_height default 96, got %d", cfg.Overlay.MinHeight)
	}
	if cfg.Recreate.DelayMS != 500 {
		t.Fatalf("expected recreate delay_ms 500, got %d", cfg.Recreate.DelayMS)
	}
	if cfg.Recreate.MaxAttempts != 3 {
		t.Fatalf("expected recreate max_attempts default 3, got %d", cfg.Recreate.MaxAttempts)
	}
}

func TestLoadFromPath_DisplayAndXAuthority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := strings.Join([]string{
		"display: \":1\"",
		"xauthority: \"/tmp/test-xauth\"",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Display != ":1" {
		t.Fatalf("expected display :1, got %q", cfg.Display)
	}
	if cfg.XAuthority != "/tmp/test-xauth" {
		t.Fatalf("expected xauthority /tmp/test-xauth, got %q", cfg.XAuthority)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("unknown_key: 1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorsCarryPathAndFile(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		path string
	}{
		{"bad opacity", "overlay:\n  opacity: 1.5\n", "overlay.opacity"},
		{"bad background", "overlay:\n  background: \"nope\"\n", "overlay.background"},
		{"bad recreate delay", "recreate:\n  delay_ms: 50\n", "recreate.delay_ms"},
		{"bad recreate attempts", "recreate:\n  max_attempts: 0\n", "recreate.max_attempts"},
		{"bad log level", "log_level: chatty\n", "log_level"},
		{"bad backend url", "backend_url: \"not a url\"\n", "backend_url"},
		{"empty toggle", "toggle_hotkey: \"\"\n", "toggle_hotkey"},
		{"auto_hide out of range", "auto_hide:\n  plain_seconds: 0\n", "auto_hide.plain_seconds"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}

			_, err := LoadFromPath(path)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if verr.Path != tc.path {
				t.Fatalf("expected path %q, got %q", tc.path, verr.Path)
			}
			if verr.File != path {
				t.Fatalf("expected file %q in error, got %q", path, verr.File)
			}
			if !strings.Contains(verr.Error(), path) {
				t.Fatalf("expected error text to include file, got %v", verr)
			}
		})
	}
}

func TestConfig_DurationGetters(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RequestTimeout() != 30*time.Second {
		t.Fatalf("expected request timeout 30s, got %v", cfg.RequestTimeout())
	}
	if cfg.HealthInterval() != 10*time.Second {
		t.Fatalf("expected health interval 10s, got %v", cfg.HealthInterval())
	}
	if cfg.ProbeInterval() != 5*time.Second {
		t.Fatalf("expected probe interval 5s, got %v", cfg.ProbeInterval())
	}
	if cfg.RecreateDelay() != time.Second {
		t.Fatalf("expected recreate delay 1s, got %v", cfg.RecreateDelay())
	}
}

func TestOverlay_BackgroundPixel(t *testing.T) {
	o := Overlay{Background: "#ff8000"}
	if got := o.BackgroundPixel(); got != 0xff8000 {
		t.Fatalf("expected pixel ff8000, got %06x", got)
	}

	// Unparseable colors fall back to the default instead of black.
	bad := Overlay{Background: "garbage"}
	def := Overlay{Background: DefaultConfig().Overlay.Background}
	if bad.BackgroundPixel() != def.BackgroundPixel() {
		t.Fatalf("expected fallback to default pixel, got %06x", bad.BackgroundPixel())
	}
}

func TestConfig_ValidationWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoHide.DetailedSeconds = 60
	cfg.CaptureHotkey = ""

	warnings := cfg.validationWarnings()
	if len(warnings) < 2 {
		t.Fatalf("expected at least 2 warnings, got %d: %v", len(warnings), warnings)
	}

	var sawDetailed, sawCapture bool
	for _, w := range warnings {
		if strings.Contains(w, "detailed_seconds") {
			sawDetailed = true
		}
		if strings.Contains(w, "capture_hotkey") {
			sawCapture = true
		}
	}
	if !sawDetailed {
		t.Fatalf("expected detailed_seconds warning, got %v", warnings)
	}
	if !sawCapture {
		t.Fatalf("expected capture_hotkey warning, got %v", warnings)
	}
}

func TestBuildEffectiveConfig_NilFieldsKeepDefaults(t *testing.T) {
	width := 800
	raw := RawConfig{
		Overlay: &RawOverlay{Width: &width},
	}

	cfg := BuildEffectiveConfig(raw)
	if cfg.Overlay.Width != 800 {
		t.Fatalf("expected width 800, got %d", cfg.Overlay.Width)
	}
	if cfg.Overlay.Opacity != 0.95 {
		t.Fatalf("expected default opacity, got %v", cfg.Overlay.Opacity)
	}
	if cfg.ToggleHotkey != "Control-space" {
		t.Fatalf("expected default toggle hotkey, got %q", cfg.ToggleHotkey)
	}
	if len(cfg.Overlay.FontNames) == 0 {
		t.Fatalf("expected default font names to survive")
	}
}
