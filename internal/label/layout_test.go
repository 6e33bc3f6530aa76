package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayout(t *testing.T) {
	m := Metrics{Width: 40, Ascent: 8, Descent: 2}

	tests := []struct {
		name string
		p    Placement
		want Box
	}{
		{
			name: "centered",
			p:    Centered,
			want: Box{MinX: 80, MinY: 95, MaxX: 120, MaxY: 105, X: 80, Baseline: 103},
		},
		{
			name: "top",
			p:    PlacementFor("top"),
			want: Box{MinX: 80, MinY: 75, MaxX: 120, MaxY: 85, X: 80, Baseline: 83},
		},
		{
			name: "bottom",
			p:    PlacementFor("bottom"),
			want: Box{MinX: 80, MinY: 115, MaxX: 120, MaxY: 125, X: 80, Baseline: 123},
		},
		{
			name: "left",
			p:    PlacementFor("left"),
			want: Box{MinX: 45, MinY: 95, MaxX: 85, MaxY: 105, X: 45, Baseline: 103},
		},
		{
			name: "right",
			p:    PlacementFor("right"),
			want: Box{MinX: 115, MinY: 95, MaxX: 155, MaxY: 105, X: 115, Baseline: 103},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Layout(tt.p, 100, 100, m)
			assert.InDelta(t, tt.want.MinX, got.MinX, 1e-9)
			assert.InDelta(t, tt.want.MinY, got.MinY, 1e-9)
			assert.InDelta(t, tt.want.MaxX, got.MaxX, 1e-9)
			assert.InDelta(t, tt.want.MaxY, got.MaxY, 1e-9)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Baseline, got.Baseline, 1e-9)
		})
	}
}

func TestBoxContains(t *testing.T) {
	b := Box{MinX: 10, MinY: 10, MaxX: 20, MaxY: 15}

	assert.True(t, b.Contains(10, 10, 0))
	assert.True(t, b.Contains(20, 15, 0))
	assert.False(t, b.Contains(21, 12, 0))
	assert.True(t, b.Contains(21, 12, 1))
}
