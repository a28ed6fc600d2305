package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"healthdemo/internal/models"
	"healthdemo/internal/version"
)

var testVersion = version.Info{
	Version:    "1.2.3",
	GitCommit:  "abc1234",
	BuildDate:  "2026-10-01T00:00:00Z",
	InstanceID: "instance-1",
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  slog.Level
		expectErr bool
	}{
		{name: "debug", input: "debug", expected: slog.LevelDebug},
		{name: "info", input: "info", expected: slog.LevelInfo},
		{name: "warn", input: "warn", expected: slog.LevelWarn},
		{name: "error", input: "error", expected: slog.LevelError},
		{name: "uppercase", input: "DEBUG", expected: slog.LevelDebug},
		{name: "mixed case", input: "Info", expected: slog.LevelInfo},
		{name: "invalid", input: "invalid", expectErr: true},
		{name: "empty", input: "", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := parseLevel(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Errorf("expected error for input %q, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error for input %q: %v", tt.input, err)
				return
			}
			if level != tt.expected {
				t.Errorf("expected level %v, got %v", tt.expected, level)
			}
		})
	}
}

func TestNew_JSONCarriesVersionFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, models.LoggingConfig{Level: "info", Format: "json"}, testVersion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("Updating application status: DOWN")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "Updating application status: DOWN" {
		t.Errorf("unexpected msg: %v", record["msg"])
	}
	if record["version"] != "1.2.3" {
		t.Errorf("expected version field, got %v", record["version"])
	}
	if record["git_commit"] != "abc1234" {
		t.Errorf("expected git_commit field, got %v", record["git_commit"])
	}
	if record["instance_id"] != "instance-1" {
		t.Errorf("expected instance_id field, got %v", record["instance_id"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, models.LoggingConfig{Level: "info", Format: "text"}, testVersion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("Killing application process")

	out := buf.String()
	if !strings.Contains(out, `msg="Killing application process"`) {
		t.Errorf("expected text record, got %q", out)
	}
	if !strings.Contains(out, "version=1.2.3") {
		t.Errorf("expected version attribute, got %q", out)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, models.LoggingConfig{Level: "warn", Format: "json"}, testVersion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}

	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("expected warn record, got %q", buf.String())
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, models.LoggingConfig{Level: "loud", Format: "json"}, testVersion)
	if err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestSetupStdout(t *testing.T) {
	logger, closer, err := Setup(models.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, testVersion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closer != nil {
		t.Error("expected nil closer for stdout")
	}
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestSetupStderr(t *testing.T) {
	_, closer, err := Setup(models.LoggingConfig{Level: "info", Format: "text", Output: "stderr"}, testVersion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closer != nil {
		t.Error("expected nil closer for stderr")
	}
}

func TestSetupFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "healthdemo.log")
	cfg := models.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: logFile}

	logger, closer, err := Setup(cfg, testVersion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closer == nil {
		t.Fatal("expected non-nil closer for file output")
	}

	logger.Info("written to file")
	closer.Close()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("expected log file to contain record, got %q", string(data))
	}
}

func TestSetupFileOutputMissingPath(t *testing.T) {
	_, _, err := Setup(models.LoggingConfig{Level: "info", Format: "json", Output: "file"}, testVersion)
	if err == nil {
		t.Fatal("expected error when file path is missing")
	}
}

func TestSetupInvalidLevelClosesFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "healthdemo.log")
	cfg := models.LoggingConfig{Level: "loud", Format: "json", Output: "file", FilePath: logFile}

	_, closer, err := Setup(cfg, testVersion)
	if err == nil {
		t.Fatal("expected error for invalid level")
	}
	if closer != nil {
		t.Error("expected nil closer on error")
	}
}
