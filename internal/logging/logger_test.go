package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"cloudpico-matrix/internal/config"
)

func TestNew_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}, "1.2.3", "matrix")

	logger.Info("render", "temperature", 21)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if got["app"] != "matrix" || got["version"] != "1.2.3" || got["env"] != "prod" {
		t.Errorf("attrs = %v; want app/version/env", got)
	}
	if got["msg"] != "render" {
		t.Errorf("msg = %v; want render", got["msg"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, config.Config{AppEnv: "prod", LogLevel: slog.LevelWarn}, "1.2.3", "matrix")

	logger.Info("hidden")
	logger.Debug("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("output = %q; want warn record", buf.String())
	}
}

func TestNew_DevUsesTextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, config.Config{AppEnv: "dev", LogLevel: slog.LevelDebug}, "dev", "matrix")

	logger.Debug("get environ", "host", "localhost")

	out := buf.String()
	if !strings.Contains(out, "get environ") || !strings.Contains(out, "host=localhost") {
		t.Errorf("output = %q; want message and attrs", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("dev output should not be JSON: %q", out)
	}
}
