package main

import (
	"strings"
	"unicode/utf8"

	text "github.com/hajimehoshi/ebiten/v2/text/v2"
)

// wrapLines breaks each line so none renders wider than maxWidth in face.
// Words stay whole unless a single word is wider than maxWidth.
func wrapLines(lines []string, face text.Face, maxWidth float64) []string {
	width := func(s string) float64 {
		w, _ := text.Measure(s, face, 0)
		return w
	}
	var out []string
	for _, l := range lines {
		out = append(out, wrapWords(l, width, maxWidth)...)
	}
	return out
}

func wrapWords(s string, width func(string) float64, maxWidth float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	cur := ""
	for _, w := range words {
		if cur != "" {
			if cand := cur + " " + w; width(cand) <= maxWidth {
				cur = cand
				continue
			}
			lines = append(lines, cur)
			cur = ""
		}
		for utf8.RuneCountInString(w) > 1 && width(w) > maxWidth {
			n := fitRunes(w, width, maxWidth)
			lines = append(lines, w[:n])
			w = w[n:]
		}
		cur = w
	}
	return append(lines, cur)
}

// fitRunes returns the byte length of the longest rune prefix of w that
// fits, and at least one rune.
func fitRunes(w string, width func(string) float64, maxWidth float64) int {
	end := 0
	for i, r := range w {
		next := i + len(string(r))
		if end > 0 && width(w[:next]) > maxWidth {
			break
		}
		end = next
	}
	return end
}
