package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("got base url %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSec != 30 {
		t.Errorf("got timeout %d", cfg.API.TimeoutSec)
	}
	if cfg.Organisation == "" {
		t.Error("default organisation missing")
	}
	if cfg.DataDir == "" {
		t.Error("default data dir missing")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	saved := &Config{
		API: APIConfig{
			BaseURL:    "https://api.sprint.example.com",
			TimeoutSec: 10,
		},
		Organisation: "Acme",
		DataDir:      "/tmp/sprintboard-test",
		Display:      DisplayConfig{Theme: "dark"},
	}
	if err := Save(path, saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.API.BaseURL != saved.API.BaseURL {
		t.Errorf("got base url %q", loaded.API.BaseURL)
	}
	if loaded.API.TimeoutSec != 10 {
		t.Errorf("got timeout %d", loaded.API.TimeoutSec)
	}
	if loaded.Organisation != "Acme" {
		t.Errorf("got organisation %q", loaded.Organisation)
	}
	if loaded.Display.Theme != "dark" {
		t.Errorf("got theme %q", loaded.Display.Theme)
	}
}
