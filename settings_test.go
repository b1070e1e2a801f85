package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSettingsMissingKeepsDefaults(t *testing.T) {
	gs = gsdef
	if err := loadSettings(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("missing file: %v", err)
	}
	if gs != gsdef {
		t.Fatalf("defaults changed: %+v", gs)
	}
	if gs.Port != 9050 || gs.tick() != 25*time.Millisecond {
		t.Fatalf("port %d tick %v", gs.Port, gs.tick())
	}
}

func TestLoadSettingsPartialFile(t *testing.T) {
	gs = gsdef
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"port": 7000, "scene": "text", "tickMs": -3}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := loadSettings(path); err != nil {
		t.Fatalf("settings not loaded: %v", err)
	}
	defer func() { gs = gsdef }()
	if gs.Port != 7000 || gs.Scene != sceneText {
		t.Fatalf("file values not applied: %+v", gs)
	}
	if gs.TickMS != gsdef.TickMS || gs.Width != gsdef.Width || gs.Earth != gsdef.Earth {
		t.Fatalf("defaults not kept: %+v", gs)
	}
}

func TestInitSettingsWritesMissingFile(t *testing.T) {
	gs = gsdef
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := initSettings(path); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := loadSettings(path); err != nil {
		t.Fatalf("defaults not written: %v", err)
	}
	if gs != gsdef {
		t.Fatalf("written defaults differ: %+v", gs)
	}
}

func TestInitSettingsKeepsCorruptFile(t *testing.T) {
	gs = gsdef
	path := filepath.Join(t.TempDir(), "settings.json")
	corrupt := []byte(`{"port": 7000,}`)
	if err := os.WriteFile(path, corrupt, 0644); err != nil {
		t.Fatal(err)
	}
	if err := initSettings(path); err == nil {
		t.Fatalf("corrupt file accepted")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(corrupt) {
		t.Fatalf("corrupt file rewritten: %s", data)
	}
	if gs != gsdef {
		t.Fatalf("settings changed: %+v", gs)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	gs = gsdef
	gs.Scene = sceneGeo
	gs.ShowStatus = true
	saveSettings(path)
	gs = gsdef
	if err := loadSettings(path); err != nil {
		t.Fatalf("saved settings not loaded: %v", err)
	}
	defer func() { gs = gsdef }()
	if gs.Scene != sceneGeo || !gs.ShowStatus {
		t.Fatalf("round trip lost values: %+v", gs)
	}
}

func TestNormalizeSettings(t *testing.T) {
	defer func() { gs = gsdef }()
	cases := []struct {
		name string
		edit func(*Settings)
		ok   func(Settings) bool
	}{
		{"port", func(s *Settings) { s.Port = 70000 }, func(s Settings) bool { return s.Port == 9050 }},
		{"canvas", func(s *Settings) { s.Height = 0 }, func(s Settings) bool { return s.Width == 1920 && s.Height == 1080 }},
		{"scene", func(s *Settings) { s.Scene = "map" }, func(s Settings) bool { return s.Scene == sceneBoth }},
		{"maxLine", func(s *Settings) { s.MaxLine = -1 }, func(s Settings) bool { return s.MaxLine == 1<<20 }},
	}
	for _, c := range cases {
		gs = gsdef
		c.edit(&gs)
		normalizeSettings()
		if !c.ok(gs) {
			t.Errorf("%s: %+v", c.name, gs)
		}
	}
}
