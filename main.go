package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"poserspace/anim"
	"poserspace/reactor"
)

var baseDir string

func main() {
	settingsPath := flag.String("settings", "settings.json", "settings file, relative to the working directory")
	port := flag.Int("port", 0, "listen port (overrides settings)")
	scene := flag.String("scene", "", "scene to draw: geo, text or both (overrides settings)")
	headless := flag.Bool("headless", false, "run without a window and log the geo position")
	debugLog := flag.Bool("debug", false, "verbose/debug logging")
	flag.Parse()

	baseDir = os.Getenv("PWD")
	if baseDir == "" {
		var err error
		if baseDir, err = os.Getwd(); err != nil {
			log.Fatalf("get working directory: %v", err)
		}
	}

	path := resolvePath(*settingsPath)
	if err := initSettings(path); err != nil {
		log.Printf("load settings: %v; using defaults", err)
	}
	if *port != 0 {
		gs.Port = *port
	}
	if *scene != "" {
		gs.Scene = *scene
	}
	normalizeSettings()
	showStatus.Store(gs.ShowStatus)

	setupLogging(*debugLog)
	defer func() {
		if r := recover(); r != nil {
			logError("panic: %v\n%s", r, debug.Stack())
		}
	}()

	ln, err := reactor.Bind(fmt.Sprintf(":%d", gs.Port))
	if err != nil {
		log.Fatalf("%v", err)
	}

	var measure anim.Measurer = anim.MeasureFunc(anim.EstimateWidth)
	if !*headless {
		if err := initFonts(); err != nil {
			log.Fatalf("parse font: %v", err)
		}
		measure = fontMeasurer{}
	}
	world := anim.NewWorld(anim.Config{
		Width:    gs.Width,
		Height:   gs.Height,
		Target:   anim.LatLon{Lat: gs.TargetLat, Lon: gs.TargetLon},
		Fallback: gs.Fallback,
		Measure:  measure,
	})

	box := &frameBox{}
	cfg := reactor.Config{
		Interval: gs.tick(),
		Consumer: box,
		MaxLine:  gs.MaxLine,
		Logf:     logError,
	}
	if *debugLog {
		cfg.Debugf = logDebug
	}
	loop := reactor.New(ln, world, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(ctx)
		cancel()
	}()
	statsDone := make(chan struct{})
	go func() {
		runStatsSaver(ctx, box, filepath.Join(baseDir, statsFile))
		close(statsDone)
	}()
	if gs.Discord {
		initDiscordRPC(ctx, box)
	}
	logError("listening on %v", loop.Addr())

	if *headless {
		runHeadless(ctx, box)
	} else {
		runGame(ctx, box)
		cancel()
	}

	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		logError("%v", err)
	}
	<-statsDone
}

// resolvePath makes p relative to baseDir unless it is absolute.
func resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
