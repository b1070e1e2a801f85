package main

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"poserspace/anim"
	"poserspace/reactor"
)

var (
	crossColor     = color.NRGBA{0xff, 0, 0, 0xff}
	highlightColor = color.NRGBA{0xff, 0xff, 0, 0xff}
)

func loadEarth(path string) (*ebiten.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return ebiten.NewImageFromImage(img), nil
}

// crosshair returns where the geo lines cross on a w×h canvas and the
// color to draw them in.
func crosshair(v anim.GeoView, w, h int) (x, y float64, clr color.Color) {
	x = anim.LonToX(v.Current.Lon, w)
	y = anim.LatToY(v.Current.Lat, h)
	if v.Highlight {
		return x, y, highlightColor
	}
	return x, y, crossColor
}

func (g *Game) drawGeo(screen *ebiten.Image, v anim.GeoView) {
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	if g.earth != nil {
		iw, ih := g.earth.Bounds().Dx(), g.earth.Bounds().Dy()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(sw)/float64(iw), float64(sh)/float64(ih))
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(g.earth, op)
	}
	x, y, clr := crosshair(v, sw, sh)
	vector.StrokeLine(screen, 0, float32(y), float32(sw), float32(y), 1, clr, false)
	vector.StrokeLine(screen, float32(x), 0, float32(x), float32(sh), 1, clr, false)
}

func entityColor(c anim.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func drawTexts(screen *ebiten.Image, texts []anim.Text) {
	for _, t := range texts {
		op := &text.DrawOptions{}
		op.GeoM.Translate(t.X, t.Y)
		op.ColorScale.ScaleWithColor(entityColor(t.Color))
		text.Draw(screen, t.Content, faceFor(t.Size), op)
	}
}

func statusLines(f anim.Frame, st reactor.Stats) []string {
	lines := []string{
		fmt.Sprintf("conns: %d open, %s accepted", st.Open, humanize.Comma(int64(st.Accepted))),
		fmt.Sprintf("records: %s geo, %s text, %s dropped, %s rejected",
			humanize.Comma(int64(st.GeoRecords)), humanize.Comma(int64(st.TextRecords)),
			humanize.Comma(int64(st.Dropped)), humanize.Comma(int64(st.Rejected))),
		fmt.Sprintf("read: %s, %d protocol errors", humanize.Bytes(st.Bytes), st.ProtocolErrors),
		fmt.Sprintf("geo: %.3f, %.3f -> %.3f, %.3f",
			f.Geo.Current.Lat, f.Geo.Current.Lon, f.Geo.Target.Lat, f.Geo.Target.Lon),
		fmt.Sprintf("texts: %d live, tick %d, %.0f fps", len(f.Texts), f.Tick, ebiten.ActualFPS()),
	}
	return append(lines, getMessages()...)
}

func drawStatus(screen *ebiten.Image, pal palette, f anim.Frame, st reactor.Stats) {
	drawPanel(screen, pal, statusLines(f, st))
}

func drawWaiting(screen *ebiten.Image, pal palette) {
	drawPanel(screen, pal, append([]string{fmt.Sprintf("waiting on port %d", gs.Port)}, getMessages()...))
}

func drawPanel(screen *ebiten.Image, pal palette, lines []string) {
	face := faceFor(statusFontSize)
	const pad = 6
	lineH := float64(statusFontSize) * 1.3
	lines = wrapLines(lines, face, float64(gs.Width)/2)
	var w float64
	for _, l := range lines {
		lw, _ := text.Measure(l, face, 0)
		w = max(w, lw)
	}
	h := lineH * float64(len(lines))
	vector.DrawFilledRect(screen, 0, 0, float32(w+2*pad), float32(h+2*pad), pal.panel, false)
	for i, l := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(pad, pad+float64(i)*lineH)
		op.ColorScale.ScaleWithColor(pal.text)
		text.Draw(screen, l, face, op)
	}
}
