package tilefetch

import (
	"reflect"
	"testing"

	"github.com/paulmach/orb"
)

func TestMbtilesMetadataBounds(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    orb.Bound
		wantErr bool
	}{
		{"valid", "-180,-85.05,180,85.05", orb.Bound{Min: orb.Point{-180, -85.05}, Max: orb.Point{180, 85.05}}, false},
		{"spaces", "1, 2, 3, 4", orb.Bound{Min: orb.Point{1, 2}, Max: orb.Point{3, 4}}, false},
		{"too few", "1,2,3", orb.Bound{}, true},
		{"not a number", "1,2,3,x", orb.Bound{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMbtilesMetadata(map[string]string{"bounds": tt.value})
			got, err := m.Bounds()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Bounds() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Bounds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMbtilesMetadataSetters(t *testing.T) {
	m := NewMbtilesMetadata(nil)

	if _, err := m.MinZoom(); err == nil {
		t.Fatalf("Expected error for missing minzoom")
	}

	b := orb.Bound{Min: orb.Point{-0.5, 51.25}, Max: orb.Point{0.25, 51.75}}
	m.SetBounds(b)
	m.SetCenter(b.Center(), 12)
	m.SetZoomRange(10, 14)

	got, err := m.Bounds()
	if err != nil || got != b {
		t.Fatalf("Bounds() = %v (%v), want %v", got, err, b)
	}

	center, z, err := m.Center()
	if err != nil || center != b.Center() || z != 12 {
		t.Fatalf("Center() = %v@%d (%v)", center, z, err)
	}

	minZoom, _ := m.MinZoom()
	maxZoom, _ := m.MaxZoom()
	if minZoom != 10 || maxZoom != 14 {
		t.Fatalf("zoom range = %d-%d", minZoom, maxZoom)
	}

	if !reflect.DeepEqual(m.Keys(), []string{"bounds", "center", "maxzoom", "minzoom"}) {
		t.Fatalf("Keys() = %v", m.Keys())
	}
}
