package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

func setup(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("COMPATGUARD_SENTRY_DSN", "")
	t.Setenv("COMPATGUARD_TRACE", "")
	xdg.Reload()
	viper.Reset()
	t.Cleanup(viper.Reset)
	return t.TempDir()
}

func TestRunMainExitCodes(t *testing.T) {
	dir := setup(t)
	if err := os.WriteFile(filepath.Join(dir, "ok.css"), []byte(".a { gap: 1rem; }"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	if code := runMain([]string{"scan", dir, "--format", "json"}, &stderr); code != 0 {
		t.Fatalf("clean scan exit = %d, stderr %q", code, stderr.String())
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.css"), []byte(".a { view-transition-name: x; }"), 0o644); err != nil {
		t.Fatal(err)
	}
	stderr.Reset()
	if code := runMain([]string{"scan", dir, "--format", "json"}, &stderr); code != 1 {
		t.Fatalf("critical scan exit = %d, want 1", code)
	}
	if stderr.Len() != 0 {
		t.Fatalf("critical findings should not print an error, got %q", stderr.String())
	}
}

func TestRunMainReportsErrors(t *testing.T) {
	dir := setup(t)

	var stderr bytes.Buffer
	code := runMain([]string{"scan", filepath.Join(dir, "missing")}, &stderr)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.HasPrefix(stderr.String(), "Error: ") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}
