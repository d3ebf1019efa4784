package logging

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatConsole, ""} {
		t.Run(string(format), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Level = "debug"
			cfg.Format = format

			logger, err := NewLogger(cfg)
			if err != nil {
				t.Fatalf("Failed to create logger: %v", err)
			}
			if logger == nil {
				t.Fatal("Expected non-nil logger")
			}

			// Should not panic
			logger.Debug("test debug message")
			logger.Info("test info message", zap.String(FieldResourceID, "r1"))
		})
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "invalid"

	if _, err := NewLogger(cfg); err == nil {
		t.Error("Expected error for invalid log level")
	}
}

func TestNewLogger_EmptyOutputsDefaulted(t *testing.T) {
	logger, err := NewLogger(Config{Level: "warn"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("Expected info to be disabled at warn level")
	}
}

func TestNew(t *testing.T) {
	logger, err := New("error", "console")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("Expected warn to be disabled at error level")
	}

	if _, err := New("info", "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		hasError bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{" console ", FormatConsole, false},
		{"text", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			format, err := ParseFormat(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("Expected error for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error for input %q: %v", tt.input, err)
			}
			if format != tt.expected {
				t.Errorf("Expected format %q, got %q", tt.expected, format)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("Expected default level 'info', got %s", cfg.Level)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("Expected default format json, got %s", cfg.Format)
	}
	if len(cfg.OutputPaths) != 1 || cfg.OutputPaths[0] != "stdout" {
		t.Errorf("Expected output paths [stdout], got %v", cfg.OutputPaths)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
		hasError bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"DEBUG", zapcore.DebugLevel, false},
		{"", zapcore.InfoLevel, false},
		{"invalid", zapcore.DebugLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)

			if tt.hasError {
				if err == nil {
					t.Errorf("Expected error for input %s", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error for input %s: %v", tt.input, err)
			}
			if level != tt.expected {
				t.Errorf("Expected level %v, got %v", tt.expected, level)
			}
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	if f := ResourceID("r1"); f.Key != FieldResourceID || f.String != "r1" {
		t.Errorf("Unexpected resource id field: %+v", f)
	}
	if f := RecordIndex(3); f.Key != FieldRecordIndex || f.Integer != 3 {
		t.Errorf("Unexpected record index field: %+v", f)
	}
	if f := Component("store"); f.Key != FieldComponent || f.String != "store" {
		t.Errorf("Unexpected component field: %+v", f)
	}
	if f := Duration(1500 * time.Microsecond); f.Key != FieldDuration {
		t.Errorf("Unexpected duration field key: %s", f.Key)
	}
}
