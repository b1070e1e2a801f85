package main

import (
	"context"
	"log"
	"time"
)

// runHeadless logs the geo position once a second instead of drawing.
func runHeadless(ctx context.Context, box *frameBox) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	var lastTick uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		f, st, ok := box.latest()
		if !ok || f.Tick == lastTick {
			continue
		}
		lastTick = f.Tick
		log.Printf("geo %.4f,%.4f target %.4f,%.4f arrived=%v texts=%d open=%d",
			f.Geo.Current.Lat, f.Geo.Current.Lon, f.Geo.Target.Lat, f.Geo.Target.Lon,
			f.Geo.Arrived, len(f.Texts), st.Open)
	}
}
