package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, Options{Level: "warn", Format: "json"})

	log.Info("hidden")
	log.Warn("Command failed", slog.String("command", "main sub2"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line written at warn level: %s", out)
	}
	if !strings.Contains(out, `"command":"main sub2"`) {
		t.Fatalf("expected JSON attributes, got %s", out)
	}

	buf.Reset()
	newLogger(&buf, Options{}).Info("ready", slog.Int("guilds", 2))
	if !strings.Contains(buf.String(), "guilds=2") {
		t.Fatalf("expected text output, got %s", buf.String())
	}
}

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	New(Options{File: path, Level: "info"}).Info("Bot is running")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "Bot is running") {
		t.Fatalf("log file missing message: %s", data)
	}
}
