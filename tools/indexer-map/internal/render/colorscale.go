package render

import (
	"fmt"
	"image/color"
)

// ScoreThreshold is the score rendered in pure yellow.
const ScoreThreshold = 950

var (
	Red    = color.RGBA{R: 0xff, A: 0xff}
	Yellow = color.RGBA{R: 0xff, G: 0xff, A: 0xff}
	Green  = color.RGBA{G: 0x80, A: 0xff}
)

// ColorScale maps scores onto red, yellow and green stops placed at the
// dataset minimum, the threshold, and the dataset maximum.
type ColorScale struct {
	Min float64
	Mid float64
	Max float64
}

// NewColorScale builds a scale over [min(scores), max(scores)]. The threshold
// stop is clamped into that range.
func NewColorScale(scores []float64, threshold float64) ColorScale {
	if len(scores) == 0 {
		return ColorScale{Min: threshold, Mid: threshold, Max: threshold}
	}
	lo, hi := scores[0], scores[0]
	for _, s := range scores[1:] {
		lo = min(lo, s)
		hi = max(hi, s)
	}
	return ColorScale{Min: lo, Mid: min(max(threshold, lo), hi), Max: hi}
}

func (s ColorScale) Color(score float64) color.RGBA {
	switch {
	case score <= s.Min:
		return Red
	case score >= s.Max:
		return Green
	case score < s.Mid:
		return lerp(Red, Yellow, (score-s.Min)/(s.Mid-s.Min))
	case score == s.Mid:
		return Yellow
	default:
		return lerp(Yellow, Green, (score-s.Mid)/(s.Max-s.Mid))
	}
}

func (s ColorScale) Hex(score float64) string {
	return Hex(s.Color(score))
}

func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}
