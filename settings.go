package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"
)

const (
	sceneGeo  = "geo"
	sceneText = "text"
	sceneBoth = "both"
)

type Settings struct {
	Port   int `json:"port"`
	TickMS int `json:"tickMs"`
	// MaxLine bounds an unterminated producer line in bytes.
	MaxLine int `json:"maxLine"`

	Width     int     `json:"width"`
	Height    int     `json:"height"`
	TargetLat float64 `json:"targetLat"`
	TargetLon float64 `json:"targetLon"`
	Fallback  float64 `json:"fallback"`

	Earth      string `json:"earth"`
	Scene      string `json:"scene"`
	Theme      string `json:"theme"`
	Fullscreen bool   `json:"fullscreen"`
	ShowStatus bool   `json:"showStatus"`

	Discord      bool   `json:"discord"`
	DiscordAppID string `json:"discordAppId"`
}

var gsdef = Settings{
	Port:      9050,
	TickMS:    25,
	MaxLine:   1 << 20,
	Width:     1920,
	Height:    1080,
	TargetLat: -52.26471465026548,
	TargetLon: 10.515537294323199,
	Earth:     "earth.png",
	Scene:     sceneBoth,
	Theme:     "auto",
}

var gs = gsdef

// loadSettings reads path over the defaults. On any error gs is left
// untouched; a missing file reports an error matching fs.ErrNotExist.
func loadSettings(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	s := gsdef
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	gs = s
	normalizeSettings()
	return nil
}

// initSettings loads path, writing the defaults there only when the file
// does not exist yet. A file that fails to parse is left as it is.
func initSettings(path string) error {
	err := loadSettings(path)
	if errors.Is(err, fs.ErrNotExist) {
		saveSettings(path)
		return nil
	}
	return err
}

// normalizeSettings replaces values the display can not run with.
func normalizeSettings() {
	if gs.Port <= 0 || gs.Port > 65535 {
		gs.Port = gsdef.Port
	}
	if gs.MaxLine <= 0 {
		gs.MaxLine = gsdef.MaxLine
	}
	if gs.TickMS <= 0 {
		gs.TickMS = gsdef.TickMS
	}
	if gs.Width <= 0 || gs.Height <= 0 {
		gs.Width, gs.Height = gsdef.Width, gsdef.Height
	}
	switch gs.Scene {
	case sceneGeo, sceneText, sceneBoth:
	default:
		gs.Scene = gsdef.Scene
	}
}

func saveSettings(path string) {
	data, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		log.Printf("save settings: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("save settings: %v", err)
	}
}

func (s Settings) tick() time.Duration {
	return time.Duration(s.TickMS) * time.Millisecond
}
