package anim

import (
	"errors"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"poserspace/proto"
)

const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

// maxNumberPrefix bounds how much of a field is considered when parsing a
// coordinate.
const maxNumberPrefix = 64

type Config struct {
	Width, Height int
	// Target and Current seed the geo state.
	Target, Current LatLon
	// Fallback replaces coordinates that do not parse.
	Fallback float64
	Sizes    SizeTable
	Rand     *rand.Rand
	Measure  Measurer
}

// World is the animation state: one geo position and the live text
// entities in spawn order. It is not safe for concurrent use; the reactor
// owns it and hands snapshots to the renderer.
type World struct {
	width, height int
	fallback      float64
	sizes         SizeTable
	rand          *rand.Rand
	measure       Measurer

	geo      Geo
	texts    []Text
	nextID   uint64
	ticks    uint64
	rejected int
}

func NewWorld(cfg Config) *World {
	w := &World{
		width:    cfg.Width,
		height:   cfg.Height,
		fallback: cfg.Fallback,
		sizes:    cfg.Sizes,
		rand:     cfg.Rand,
		measure:  cfg.Measure,
		geo:      Geo{Target: cfg.Target, Current: cfg.Current},
	}
	if w.width <= 0 {
		w.width = DefaultWidth
	}
	if w.height <= 0 {
		w.height = DefaultHeight
	}
	if len(w.sizes) == 0 {
		w.sizes = DefaultSizes
	}
	if w.rand == nil {
		w.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return w
}

// Consume applies one data record. It implements proto.Sink.
func (w *World) Consume(kind proto.Kind, fields []string) {
	switch kind {
	case proto.Geo:
		w.consumeGeo(fields)
	case proto.Text:
		w.consumeText(fields)
	}
}

// consumeGeo takes the first two fields as latitude and longitude. Records
// with fewer fields are rejected rather than half applied.
func (w *World) consumeGeo(fields []string) {
	if len(fields) < 2 {
		w.rejected++
		return
	}
	w.geo.Target = LatLon{
		Lat: parseCoord(fields[0], w.fallback),
		Lon: parseCoord(fields[1], w.fallback),
	}
}

func (w *World) consumeText(fields []string) {
	if len(fields) == 0 || fields[0] == "" {
		return
	}
	size := w.sizes.Size(len(w.texts), w.rand)
	w.nextID++
	w.texts = append(w.texts, Text{
		ID:      w.nextID,
		X:       float64(w.width),
		Y:       float64(w.rand.IntN(w.height)),
		Size:    size,
		Color:   textColor(size, w.rand),
		Content: fields[0],
		Width:   float64(w.width * 2),
	})
}

// parseCoord reads the longest leading number of s ("12.5abc" is 12.5) and
// falls back when there is none, it overflows, or it is not finite.
func parseCoord(s string, fallback float64) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && end < maxNumberPrefix && strings.IndexByte("+-.0123456789eE", s[end]) >= 0 {
		end++
	}
	for ; end > 0; end-- {
		v, err := strconv.ParseFloat(s[:end], 64)
		if errors.Is(err, strconv.ErrRange) {
			// A shorter prefix would drop exponent digits, not trailing junk.
			return fallback
		}
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
	return fallback
}

// Tick advances the animation by one step and returns the resulting frame.
func (w *World) Tick(now time.Time) Frame {
	w.ticks++
	w.geo.Smooth()

	live := w.texts[:0]
	for _, t := range w.texts {
		if !t.Measured && w.measure != nil {
			t.Width = w.measure.MeasureText(t.Content, t.Size)
			t.Measured = true
		}
		t.X -= Speed(t.Width)
		if t.X > -t.Width {
			live = append(live, t)
		}
	}
	clear(w.texts[len(live):])
	w.texts = live
	return w.Frame(now)
}

// SetWidth records the measured width of a live entity.
func (w *World) SetWidth(id uint64, width float64) bool {
	for i := range w.texts {
		if w.texts[i].ID == id {
			w.texts[i].Width = width
			w.texts[i].Measured = true
			return true
		}
	}
	return false
}

// SetMeasurer replaces the width source used for unmeasured entities.
func (w *World) SetMeasurer(m Measurer) { w.measure = m }

func (w *World) Geo() Geo { return w.geo }

// Len is the number of live text entities.
func (w *World) Len() int { return len(w.texts) }

// Rejected counts geo records with too few fields.
func (w *World) Rejected() int { return w.rejected }

// Texts returns a copy of the live entities.
func (w *World) Texts() []Text {
	return append([]Text(nil), w.texts...)
}

func (w *World) Size() (int, int) { return w.width, w.height }

// Frame snapshots the state without advancing it.
func (w *World) Frame(now time.Time) Frame {
	return Frame{
		Tick: w.ticks,
		Time: now,
		Geo: GeoView{
			Current:   w.geo.Current,
			Target:    w.geo.Target,
			Arrived:   w.geo.Arrived(),
			Highlight: w.geo.Highlight(now),
		},
		Texts: w.Texts(),
	}
}
