package main

import (
	"image/color"
	"log"

	dark "github.com/thiagokokada/dark-mode-go"
)

// palette colors the status overlay. The scenes themselves always draw on
// black.
type palette struct {
	panel color.Color
	text  color.Color
}

var (
	darkPalette  = palette{panel: color.NRGBA{0, 0, 0, 0xc0}, text: color.NRGBA{0xe0, 0xe0, 0xe0, 0xff}}
	lightPalette = palette{panel: color.NRGBA{0xf0, 0xf0, 0xf0, 0xc0}, text: color.NRGBA{0x20, 0x20, 0x20, 0xff}}
)

func pickPalette(theme string) palette {
	switch theme {
	case "dark":
		return darkPalette
	case "light":
		return lightPalette
	}
	darkMode, err := dark.IsDarkMode()
	if err != nil {
		log.Printf("theme: %v", err)
		return darkPalette
	}
	if darkMode {
		return darkPalette
	}
	return lightPalette
}
