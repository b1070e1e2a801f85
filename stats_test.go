package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"poserspace/anim"
	"poserspace/reactor"
)

func TestSaveStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), statsFile)
	if err := saveStats(path, reactor.Stats{Accepted: 3, TextRecords: 7}); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rec statsRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Stats.Accepted != 3 || rec.Stats.TextRecords != 7 || rec.Saved.IsZero() {
		t.Fatalf("got %+v", rec)
	}
}

func TestStatsSaverFinalSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), statsFile)
	box := &frameBox{}
	box.Render(anim.Frame{}, reactor.Stats{GeoRecords: 5})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runStatsSaver(ctx, box, path)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("no stats written: %v", err)
	}
	var rec statsRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.Stats.GeoRecords != 5 {
		t.Fatalf("got %+v, %v", rec, err)
	}
}
