package anim

import "math/rand/v2"

// minSize is added to every drawn size class, so the smallest text is 4.
const minSize = 4

type Color struct {
	R, G, B, A uint8
}

// Text is one scrolling line of text. Width stays a placeholder until the
// renderer has measured the content once.
type Text struct {
	ID       uint64
	X, Y     float64
	Size     int
	Color    Color
	Content  string
	Width    float64
	Measured bool
}

// SizeStep is one row of a SizeTable. It applies while fewer than Below
// entities are live (Below == 0 means no bound). With probability 1/OneIn
// the cap is RareCap instead of Cap; OneInLive uses the live count as N.
type SizeStep struct {
	Below     int
	Cap       int
	OneIn     int
	OneInLive bool
	RareCap   int
}

// SizeTable picks the cap for a new entity's size class from the number of
// live entities. Rows are checked in order.
type SizeTable []SizeStep

// DefaultSizes keeps a crowded screen mostly small with the occasional
// outsized line.
var DefaultSizes = SizeTable{
	{Below: 20, Cap: 28},
	{Below: 25, Cap: 24, OneIn: 10, RareCap: 28},
	{Below: 30, Cap: 20, OneIn: 15, RareCap: 28},
	{Below: 50, Cap: 16, OneIn: 20, RareCap: 24},
	{Below: 80, Cap: 12, OneIn: 40, RareCap: 24},
	{Below: 110, Cap: 8, OneIn: 50, RareCap: 24},
	{Below: 200, Cap: 4, OneIn: 100, RareCap: 24},
	{Cap: 1, OneInLive: true, RareCap: 24},
}

// Cap returns the exclusive upper bound for rand before minSize is added.
func (t SizeTable) Cap(live int, r *rand.Rand) int {
	for _, s := range t {
		if s.Below > 0 && live >= s.Below {
			continue
		}
		n := s.OneIn
		if s.OneInLive {
			n = live
		}
		c := s.Cap
		if n > 0 && r.IntN(n) == 0 {
			c = s.RareCap
		}
		return max(c, 1)
	}
	return 1
}

// Size draws a size class for a new entity.
func (t SizeTable) Size(live int, r *rand.Rand) int {
	return r.IntN(t.Cap(live, r)) + minSize
}

// textColor is green, brighter for larger text, with some jitter.
func textColor(size int, r *rand.Rand) Color {
	g := int(64 + 191*float64(size)/32 - float64(r.IntN(32)))
	g = min(max(g, 0), 255)
	return Color{G: uint8(g), A: 128}
}

// Speed is the horizontal distance an entity of the given width moves per
// tick. Wide text moves faster, but never more than 20 pixels.
func Speed(width float64) float64 {
	dx := 0.1 + width/64
	for dx > 20 {
		dx /= 10
	}
	return dx
}

// Measurer returns the rendered width of content at a size class. The
// renderer supplies it.
type Measurer interface {
	MeasureText(content string, size int) float64
}

type MeasureFunc func(content string, size int) float64

func (f MeasureFunc) MeasureText(content string, size int) float64 {
	return f(content, size)
}

// EstimateWidth approximates a monospace rendering for callers without a
// font, such as headless mode.
func EstimateWidth(content string, size int) float64 {
	return float64(len([]rune(content))) * float64(size) * 0.6
}
