package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexerMap_Render_ColorScale_Stops(t *testing.T) {
	t.Parallel()

	scale := NewColorScale([]float64{900, 1000, 975, 940}, ScoreThreshold)
	require.Equal(t, ColorScale{Min: 900, Mid: 950, Max: 1000}, scale)

	require.Equal(t, "#ff0000", scale.Hex(900))
	require.Equal(t, "#ffff00", scale.Hex(950))
	require.Equal(t, "#008000", scale.Hex(1000))

	// Outside the dataset range clamps to the end stops.
	require.Equal(t, "#ff0000", scale.Hex(100))
	require.Equal(t, "#008000", scale.Hex(2000))
}

func TestIndexerMap_Render_ColorScale_Interpolates(t *testing.T) {
	t.Parallel()

	scale := NewColorScale([]float64{900, 1000}, ScoreThreshold)

	// Halfway between red and yellow.
	require.Equal(t, "#ff8000", scale.Hex(925))
	// Halfway between yellow and green: (255+0)/2, (255+128)/2.
	require.Equal(t, "#80c000", scale.Hex(975))
}

func TestIndexerMap_Render_ColorScale_ThresholdClamped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scores []float64
		want   ColorScale
	}{
		{name: "all above threshold", scores: []float64{960, 990}, want: ColorScale{Min: 960, Mid: 960, Max: 990}},
		{name: "all below threshold", scores: []float64{100, 500}, want: ColorScale{Min: 100, Mid: 500, Max: 500}},
		{name: "single score", scores: []float64{920}, want: ColorScale{Min: 920, Mid: 920, Max: 920}},
		{name: "empty", scores: nil, want: ColorScale{Min: 950, Mid: 950, Max: 950}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, NewColorScale(tt.scores, ScoreThreshold))
		})
	}
}

func TestIndexerMap_Render_ColorScale_AllAboveThreshold(t *testing.T) {
	t.Parallel()

	scale := NewColorScale([]float64{960, 990}, ScoreThreshold)
	require.Equal(t, "#ff0000", scale.Hex(960))
	require.Equal(t, "#008000", scale.Hex(990))
	// Between the collapsed red/yellow stop and green.
	require.Equal(t, "#80c000", scale.Hex(975))
}

func TestIndexerMap_Render_ColorScale_SingleScoreIsRed(t *testing.T) {
	t.Parallel()

	scale := NewColorScale([]float64{920}, ScoreThreshold)
	require.Equal(t, "#ff0000", scale.Hex(920))
}
