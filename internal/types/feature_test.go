package types

import "testing"

func TestAnchorSideKnown(t *testing.T) {
	tests := []struct {
		side AnchorSide
		want bool
	}{
		{AnchorTop, true},
		{AnchorBottom, true},
		{AnchorLeft, true},
		{AnchorRight, true},
		{AnchorUnspecified, false},
		{AnchorSide("center"), false},
		{AnchorSide("TOP"), false},
	}

	for _, tt := range tests {
		if got := tt.side.Known(); got != tt.want {
			t.Errorf("AnchorSide(%q).Known() = %v, want %v", tt.side, got, tt.want)
		}
	}
}

func TestPointFeatureString(t *testing.T) {
	f := PointFeature{Name: "Paris", Lon: 2.3522, Lat: 48.8566, AnchorSide: AnchorLeft}
	if got, want := f.String(), "Paris(2.3522,48.8566,left)"; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}

	f.AnchorSide = AnchorUnspecified
	if got, want := f.String(), "Paris(2.3522,48.8566,unspecified)"; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}

func TestBoundingBoxContains(t *testing.T) {
	b := BoundingBox{MinLon: -10, MinLat: 40, MaxLon: 20, MaxLat: 60}

	if !b.Contains(PointFeature{Name: "Berlin", Lon: 13.405, Lat: 52.52}) {
		t.Errorf("expected Berlin inside %s", b)
	}
	if !b.Contains(PointFeature{Name: "edge", Lon: -10, Lat: 40}) {
		t.Errorf("expected edge point inside %s", b)
	}
	if b.Contains(PointFeature{Name: "Null Island", Lon: 0, Lat: 0}) {
		t.Errorf("expected Null Island outside %s", b)
	}
}
