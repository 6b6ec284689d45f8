package x11

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureDisplayEnv_ExistingEnvWins(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return ":99", "/tmp/should-not-be-used" },
		func(string) string { return ":88" },
	)
	defer restore()

	t.Setenv("DISPLAY", ":7")
	t.Setenv("XAUTHORITY", "/tmp/xauth-existing")

	if err := EnsureDisplayEnv(":1", "/tmp/cfg"); err != nil {
		t.Fatalf("EnsureDisplayEnv returned error: %v", err)
	}

	if got := os.Getenv("DISPLAY"); got != ":7" {
		t.Fatalf("DISPLAY = %q, want %q", got, ":7")
	}
	if got := os.Getenv("XAUTHORITY"); got != "/tmp/xauth-existing" {
		t.Fatalf("XAUTHORITY = %q, want %q", got, "/tmp/xauth-existing")
	}
}

func TestEnsureDisplayEnv_UsesConfigAndFallsBackToHomeXAuthority(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return "", "" },
		func(string) string { return "" },
	)
	defer restore()

	home := t.TempDir()
	xauth := filepath.Join(home, ".Xauthority")
	if err := os.WriteFile(xauth, []byte("cookie"), 0600); err != nil {
		t.Fatalf("write xauthority: %v", err)
	}

	t.Setenv("HOME", home)
	t.Setenv("DISPLAY", "")
	t.Setenv("XAUTHORITY", "")

	if err := EnsureDisplayEnv(":1", ""); err != nil {
		t.Fatalf("EnsureDisplayEnv returned error: %v", err)
	}

	if got := os.Getenv("DISPLAY"); got != ":1" {
		t.Fatalf("DISPLAY = %q, want %q", got, ":1")
	}
	if got := os.Getenv("XAUTHORITY"); got != xauth {
		t.Fatalf("XAUTHORITY = %q, want %q", got, xauth)
	}
}

func TestEnsureDisplayEnv_UsesDetectedValues(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return ":5", "/tmp/xauth-detected" },
		func(string) string { return "" },
	)
	defer restore()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("DISPLAY", "")
	t.Setenv("XAUTHORITY", "")

	if err := EnsureDisplayEnv("", ""); err != nil {
		t.Fatalf("EnsureDisplayEnv returned error: %v", err)
	}

	if got := os.Getenv("DISPLAY"); got != ":5" {
		t.Fatalf("DISPLAY = %q, want %q", got, ":5")
	}
	if got := os.Getenv("XAUTHORITY"); got != "/tmp/xauth-detected" {
		t.Fatalf("XAUTHORITY = %q, want %q", got, "/tmp/xauth-detected")
	}
}

func TestEnsureDisplayEnv_ReturnsClearErrorWhenDisplayUnavailable(t *testing.T) {
	restore := stubDetectFns(
		func() (string, string) { return "", "" },
		func(string) string { return "" },
	)
	defer restore()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("DISPLAY", "")
	t.Setenv("XAUTHORITY", "")

	err := EnsureDisplayEnv("", "")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "no X display found") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDetectDisplayFromSockets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "X0"), []byte{}, 0600); err != nil {
		t.Fatalf("write X0: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "X2"), []byte{}, 0600); err != nil {
		t.Fatalf("write X2: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "not-a-display"), []byte{}, 0600); err != nil {
		t.Fatalf("write junk: %v", err)
	}

	if got := detectDisplayFromSockets(dir); got != ":2" {
		t.Fatalf("detectDisplayFromSockets = %q, want %q", got, ":2")
	}
}

func TestParseLoginctlSessions(t *testing.T) {
	out := strings.Join([]string{
		"1 1000 george seat0",
		"2 1001 alice seat0",
		"3 1000 george seat1",
		"",
	}, "\n")
	got := parseLoginctlSessions(out, "1000")
	if len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Fatalf("parseLoginctlSessions = %v, want [1 3]", got)
	}
}

func stubDetectFns(
	detectSession func() (string, string),
	detectSocket func(string) string,
) func() {
	origSession := detectSessionX11EnvFn
	origSocket := detectDisplayFromSocketFn
	detectSessionX11EnvFn = detectSession
	detectDisplayFromSocketFn = detectSocket
	return func() {
		detectSessionX11EnvFn = origSession
		detectDisplayFromSocketFn = origSocket
	}
}
