package logger

import (
	"log/slog"
	"testing"
)

func TestInitValidLevels(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"error", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Init(tt.level); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if Get() == nil {
				t.Fatal("Get() returned nil")
			}
		})
	}
}

func TestInitInvalidLevel(t *testing.T) {
	if err := Init("invalid"); err == nil {
		t.Error("expected error for invalid log level, got nil")
	}
}

func TestGetBeforeInit(t *testing.T) {
	globalLogger = nil

	got := Get()
	if got == nil {
		t.Fatal("Get() should return default logger when not initialized")
	}
	if got != slog.Default() {
		t.Error("Get() should return slog.Default() when not initialized")
	}
}

func TestGetAfterInit(t *testing.T) {
	if err := Init("info"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := Get()
	if got == nil {
		t.Fatal("Get() returned nil after initialization")
	}
	if got != globalLogger {
		t.Error("Get() should return the initialized logger")
	}
}
