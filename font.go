package main

import (
	"bytes"

	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gomono"
)

// maxFontSize is the largest size class a text entity can get.
const maxFontSize = 31

const statusFontSize = 14

var faces [maxFontSize + 1]text.Face

func initFonts() error {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		return err
	}
	for i := 1; i <= maxFontSize; i++ {
		faces[i] = &text.GoTextFace{Source: src, Size: float64(i)}
	}
	return nil
}

func faceFor(size int) text.Face {
	return faces[min(max(size, 1), maxFontSize)]
}

// fontMeasurer reports rendered widths to the world so entities scroll off
// exactly when their last glyph leaves the screen.
type fontMeasurer struct{}

func (fontMeasurer) MeasureText(content string, size int) float64 {
	w, _ := text.Measure(content, faceFor(size), 0)
	return w
}
