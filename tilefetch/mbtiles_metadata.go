package tilefetch

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MbtilesMetadata holds the name/value rows of an MBTiles metadata table.
type MbtilesMetadata struct {
	metadata map[string]string
}

func NewMbtilesMetadata(metadata map[string]string) *MbtilesMetadata {
	if metadata == nil {
		metadata = make(map[string]string)
	}

	return &MbtilesMetadata{
		metadata: metadata,
	}
}

func (m *MbtilesMetadata) Get(k string) (string, bool) {
	v, exists := m.metadata[k]
	return v, exists
}

func (m *MbtilesMetadata) Set(key string, value string) {
	m.metadata[key] = value
}

// Keys returns the metadata names in sorted order.
func (m *MbtilesMetadata) Keys() []string {
	keys := make([]string, 0, len(m.metadata))
	for k := range m.metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated values, got %d", n, len(parts))
	}

	values := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", p, err)
		}
		values[i] = v
	}
	return values, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Bounds parses the "minx,miny,maxx,maxy" bounds row.
func (m *MbtilesMetadata) Bounds() (orb.Bound, error) {
	var bounds orb.Bound

	strBounds, exists := m.Get("bounds")
	if !exists {
		return bounds, fmt.Errorf("metadata is missing bounds")
	}

	v, err := parseFloats(strBounds, 4)
	if err != nil {
		return bounds, fmt.Errorf("invalid bounds metadata: %w", err)
	}

	bounds = orb.Bound{
		Min: orb.Point{v[0], v[1]},
		Max: orb.Point{v[2], v[3]},
	}
	return bounds, nil
}

func (m *MbtilesMetadata) SetBounds(bounds orb.Bound) {
	m.Set("bounds", strings.Join([]string{
		formatFloat(bounds.Min.X()),
		formatFloat(bounds.Min.Y()),
		formatFloat(bounds.Max.X()),
		formatFloat(bounds.Max.Y()),
	}, ","))
}

// Center parses the "lon,lat,zoom" center row.
func (m *MbtilesMetadata) Center() (orb.Point, maptile.Zoom, error) {
	var pt orb.Point

	strCenter, exists := m.Get("center")
	if !exists {
		return pt, 0, fmt.Errorf("metadata is missing center")
	}

	v, err := parseFloats(strCenter, 3)
	if err != nil {
		return pt, 0, fmt.Errorf("invalid center metadata: %w", err)
	}

	return orb.Point{v[0], v[1]}, maptile.Zoom(v[2]), nil
}

func (m *MbtilesMetadata) SetCenter(pt orb.Point, z maptile.Zoom) {
	m.Set("center", fmt.Sprintf("%s,%s,%d", formatFloat(pt.X()), formatFloat(pt.Y()), z))
}

func (m *MbtilesMetadata) zoom(key string) (maptile.Zoom, error) {
	str, exists := m.Get(key)
	if !exists {
		return 0, fmt.Errorf("metadata is missing %s", key)
	}

	i, err := strconv.ParseUint(str, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s value: %w", key, err)
	}

	return maptile.Zoom(i), nil
}

func (m *MbtilesMetadata) MinZoom() (maptile.Zoom, error) {
	return m.zoom("minzoom")
}

func (m *MbtilesMetadata) MaxZoom() (maptile.Zoom, error) {
	return m.zoom("maxzoom")
}

func (m *MbtilesMetadata) SetZoomRange(minZoom maptile.Zoom, maxZoom maptile.Zoom) {
	m.Set("minzoom", strconv.FormatUint(uint64(minZoom), 10))
	m.Set("maxzoom", strconv.FormatUint(uint64(maxZoom), 10))
}

func (m *MbtilesMetadata) Format() string {
	return m.metadata["format"]
}

func (m *MbtilesMetadata) Name() string {
	return m.metadata["name"]
}
