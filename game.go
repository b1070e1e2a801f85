package main

import (
	"context"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"poserspace/anim"
	"poserspace/reactor"
)

// frameBox holds the newest frame from the loop. The loop writes it once
// per tick and the renderer, stats saver, and presence updater read it.
type frameBox struct {
	mu    sync.Mutex
	frame anim.Frame
	stats reactor.Stats
	ok    bool
}

// Render implements reactor.Consumer.
func (b *frameBox) Render(f anim.Frame, st reactor.Stats) {
	b.mu.Lock()
	b.frame = f
	b.stats = st
	b.ok = true
	b.mu.Unlock()
}

func (b *frameBox) latest() (anim.Frame, reactor.Stats, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frame, b.stats, b.ok
}

type Game struct {
	ctx   context.Context
	box   *frameBox
	scene string
	pal   palette
	earth *ebiten.Image
	once  sync.Once
}

var scenes = []string{sceneBoth, sceneGeo, sceneText}

func (g *Game) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	default:
	}
	g.once.Do(g.init)

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.scene = nextScene(g.scene)
		logDebug("scene %s", g.scene)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		showStatus.Store(!showStatus.Load())
	}
	return nil
}

func (g *Game) init() {
	g.pal = pickPalette(gs.Theme)
	if g.scene == sceneText {
		return
	}
	img, err := loadEarth(resolvePath(gs.Earth))
	if err != nil {
		logError("earth image: %v", err)
		return
	}
	g.earth = img
}

func nextScene(cur string) string {
	for i, s := range scenes {
		if s == cur {
			return scenes[(i+1)%len(scenes)]
		}
	}
	return scenes[0]
}

func (g *Game) Draw(screen *ebiten.Image) {
	f, st, ok := g.box.latest()
	if !ok {
		drawWaiting(screen, g.pal)
		return
	}
	switch g.scene {
	case sceneGeo:
		g.drawGeo(screen, f.Geo)
	case sceneText:
		drawTexts(screen, f.Texts)
	default:
		g.drawGeo(screen, f.Geo)
		drawTexts(screen, f.Texts)
	}
	if showStatus.Load() {
		drawStatus(screen, g.pal, f, st)
	}
}

// Layout keeps the producer coordinate space fixed; ebiten scales it to the
// window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return gs.Width, gs.Height
}

func runGame(ctx context.Context, box *frameBox) {
	ebiten.SetWindowTitle("-[ data ]-")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	w, _ := ebiten.Monitor().Size()
	if w <= 0 || w > gs.Width {
		w = gs.Width
	}
	w = w * 3 / 4
	ebiten.SetWindowSize(w, w*gs.Height/gs.Width)
	if gs.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	g := &Game{ctx: ctx, box: box, scene: gs.Scene}
	if err := ebiten.RunGame(g); err != nil {
		log.Printf("ebiten: %v", err)
	}
}
