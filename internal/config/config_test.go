package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Listen == "" {
		t.Fatal("expected default listen address")
	}
	if cfg.SourceTimezone != "UTC" {
		t.Fatalf("expected UTC source timezone, got %q", cfg.SourceTimezone)
	}
	if len(cfg.Sessions) != 3 {
		t.Fatalf("expected 3 built-in sessions, got %d", len(cfg.Sessions))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o600 {
		t.Fatalf("expected 0600 perms, got %o", got)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	in := &Config{
		Listen:   "127.0.0.1:9999",
		Timezone: "Asia/Tokyo",
		Sessions: []SessionEntry{
			{Host: "Stefan H.", Weekday: 6, Start: "16:00", End: "18:00"},
			{Host: "Steven Borrie", From: "2024-01-07T09:30:00Z", To: "2024-01-07T10:30:00Z"},
		},
	}
	if err := Save(path, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Listen != "127.0.0.1:9999" || out.Timezone != "Asia/Tokyo" {
		t.Fatalf("round trip lost fields: %+v", out)
	}
	if len(out.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(out.Sessions))
	}
	if !out.Sessions[0].Relative() {
		t.Fatal("expected first entry to use the weekday encoding")
	}
	if out.Sessions[1].Relative() {
		t.Fatal("expected second entry to use the instant encoding")
	}
}

func TestSessionEntry_ParseInstants(t *testing.T) {
	e := SessionEntry{
		Host: "Steven Borrie",
		From: "2024-01-07T09:30:00Z",
		To:   "2024-01-07T10:30:00Z",
	}
	from, to, err := e.ParseInstants()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if to.Sub(from) != time.Hour {
		t.Fatalf("expected 1 hour span, got %s", to.Sub(from))
	}

	bad := SessionEntry{From: "yesterday", To: "tomorrow"}
	if _, _, err := bad.ParseInstants(); err == nil {
		t.Fatal("expected error for malformed timestamps")
	}
}
