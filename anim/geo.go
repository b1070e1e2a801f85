package anim

import (
	"math"
	"time"
)

// Smoothing weights applied per tick: current = current*keep + target*pull.
const (
	geoKeep = 0.9
	geoPull = 0.1
)

// blinkHalfPeriod toggles the arrival highlight, giving a 0.2s blink.
const blinkHalfPeriod = 100 * time.Millisecond

type LatLon struct {
	Lat, Lon float64
}

// Geo is the smoothed map position. Target is whatever the last geo record
// said; Current trails it by a low-pass filter.
type Geo struct {
	Target  LatLon
	Current LatLon
}

// Smooth moves Current a tenth of the way to Target on each axis.
func (g *Geo) Smooth() {
	g.Current.Lat = g.Current.Lat*geoKeep + g.Target.Lat*geoPull
	g.Current.Lon = g.Current.Lon*geoKeep + g.Target.Lon*geoPull
}

// Distance2 is the squared distance between Current and Target in degrees.
func (g *Geo) Distance2() float64 {
	dLat := g.Current.Lat - g.Target.Lat
	dLon := g.Current.Lon - g.Target.Lon
	return dLat*dLat + dLon*dLon
}

// Arrived reports whether Current is within one degree of Target.
func (g *Geo) Arrived() bool {
	return g.Distance2() < 1
}

// Highlight combines Arrived with the blink phase at now.
func (g *Geo) Highlight(now time.Time) bool {
	return g.Arrived() && blinkOn(now)
}

func blinkOn(now time.Time) bool {
	return (now.UnixNano()/int64(blinkHalfPeriod))%2 == 1
}

// LonToX maps a longitude onto a canvas of the given width.
func LonToX(lon float64, width int) float64 {
	return (lon + 180) / 360 * float64(width)
}

// LatToY maps a latitude onto a canvas of the given height using the
// Mercator projection, north at the top.
func LatToY(lat float64, height int) float64 {
	h := float64(height)
	return h/2 - h/1.7/math.Pi*math.Log(math.Tan(math.Pi/4+lat/180*math.Pi/2))
}
