package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"poserspace/reactor"
)

const statsFile = "stats.json"

type statsRecord struct {
	Saved time.Time     `json:"saved"`
	Stats reactor.Stats `json:"stats"`
}

// saveStats writes the ingest counters of this run. They are never read
// back; a restart starts from zero.
func saveStats(path string, st reactor.Stats) error {
	data, err := json.MarshalIndent(statsRecord{Saved: time.Now(), Stats: st}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// runStatsSaver saves once a minute while counters change, and once more
// when ctx is done.
func runStatsSaver(ctx context.Context, box *frameBox, path string) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	var last reactor.Stats
	save := func() {
		_, st, ok := box.latest()
		if !ok {
			return
		}
		st.Ticks = 0
		if st == last {
			return
		}
		last = st
		if err := saveStats(path, st); err != nil {
			logError("save stats: %v", err)
		}
	}
	for {
		select {
		case <-ctx.Done():
			save()
			return
		case <-ticker.C:
			save()
		}
	}
}
