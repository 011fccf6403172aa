package cli

import (
	"bytes"
	"strings"
	"testing"

	"movimentos/internal/config"
)

func TestSetupLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(&buf, "warn", "app")

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.Contains(out, "component=app") {
		t.Fatalf("component missing from %q", out)
	}
}

func TestLoadAndValidateConfigCustomValidator(t *testing.T) {
	t.Setenv("PORT", "9999")
	called := false
	cfg := LoadAndValidateConfig(setupLogger(&bytes.Buffer{}, "info", "app").Slog(), func(c *config.Config) error {
		called = true
		return nil
	})
	if !called || cfg.Port != "9999" {
		t.Fatalf("validator called=%v port=%s", called, cfg.Port)
	}
}
