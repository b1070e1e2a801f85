package anim

import "time"

// GeoView is the geo state as the renderer sees it.
type GeoView struct {
	Current, Target LatLon
	Arrived         bool
	// Highlight is Arrived gated by the blink phase; draw in the alternate
	// color while it is set.
	Highlight bool
}

// Frame is a read-only copy of the animation state after a tick.
type Frame struct {
	Tick  uint64
	Time  time.Time
	Geo   GeoView
	Texts []Text
}
