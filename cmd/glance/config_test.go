package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigValidate_OK(t *testing.T) {
	path := writeConfig(t, "backend_url: http://127.0.0.1:9000\n")

	if code := runConfig([]string{"validate", "--path", path}); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}

func TestConfigValidate_BadURL(t *testing.T) {
	path := writeConfig(t, "backend_url: not-a-url\n")

	if code := runConfig([]string{"validate", "--path", path}); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestConfigValidate_UnknownKey(t *testing.T) {
	path := writeConfig(t, "no_such_option: true\n")

	if code := runConfig([]string{"validate", "--path", path}); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestConfigPrint_Defaults(t *testing.T) {
	if code := runConfig([]string{"print", "--defaults"}); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}

func TestConfigUnknownSubcommand(t *testing.T) {
	if code := runConfig([]string{"bogus"}); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}
