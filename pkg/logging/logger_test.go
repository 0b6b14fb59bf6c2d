package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		enable slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"warn level", "warn", slog.LevelWarn},
		{"default info", "", slog.LevelInfo},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level)
			if !logger.Enabled(ctx, tt.enable) {
				t.Fatalf("expected level %s to be enabled", tt.enable)
			}
		})
	}
}

func TestNewTextLevels(t *testing.T) {
	logger := NewText("error")
	ctx := context.Background()
	if logger.Enabled(ctx, slog.LevelWarn) {
		t.Error("NewText(error) should not enable warn level")
	}
	if !logger.Enabled(ctx, slog.LevelError) {
		t.Error("NewText(error) should enable error level")
	}
}

func TestDefaultLogger(t *testing.T) {
	logger := Default()

	// Won't panic if properly initialized
	logger.Info("test message", "key", "value")

	ctx := context.Background()
	if !logger.Enabled(ctx, slog.LevelInfo) {
		t.Error("Default() should enable info level")
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		t.Error("Default() should not enable debug level (info is higher)")
	}

	if logger.Logger == nil {
		t.Fatal("Default() returned Logger with nil slog.Logger (should be impossible)")
	}
}

func TestWithAttrs(t *testing.T) {
	logger := Default().With("channel", "scheduling")
	if logger.Logger == nil {
		t.Fatal("With() returned Logger with nil slog.Logger")
	}
	logger.Info("attributed message")
}
