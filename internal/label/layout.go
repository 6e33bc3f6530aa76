package label

// Metrics describes the measured extent of a label's text in pixels.
type Metrics struct {
	Width   float64 // advance width of the whole string
	Ascent  float64 // distance from baseline to the top of the em box
	Descent float64 // distance from baseline to the bottom of the em box
}

// Box is a label's text box in screen pixels.
// (X, Baseline) is the dot position a font drawer starts from.
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
	X          float64
	Baseline   float64
}

// Layout places text with metrics m around the anchor pixel (ax, ay) using p.
// Alignment and baseline follow canvas text semantics: "right" puts the end of the
// string on the anchor, "bottom" puts the bottom of the em box on it.
func Layout(p Placement, ax, ay float64, m Metrics) Box {
	x := ax + p.OffsetX
	y := ay + p.OffsetY

	switch p.TextAlign {
	case AlignLeft:
	case AlignRight:
		x -= m.Width
	default:
		x -= m.Width / 2
	}

	var baseline float64
	switch p.TextBaseline {
	case BaselineTop:
		baseline = y + m.Ascent
	case BaselineBottom:
		baseline = y - m.Descent
	default:
		baseline = y + (m.Ascent-m.Descent)/2
	}

	return Box{
		MinX:     x,
		MinY:     baseline - m.Ascent,
		MaxX:     x + m.Width,
		MaxY:     baseline + m.Descent,
		X:        x,
		Baseline: baseline,
	}
}

// Contains reports whether the pixel (px, py) lies inside the box grown by pad on every side.
func (b Box) Contains(px, py, pad float64) bool {
	return px >= b.MinX-pad && px <= b.MaxX+pad && py >= b.MinY-pad && py <= b.MaxY+pad
}
