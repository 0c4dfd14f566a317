package tilefetch

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MbtilesSummary describes an archive as found on disk. Zooms and bounds come
// from the tiles table, not from the metadata rows.
type MbtilesSummary struct {
	Name     string
	Format   string
	Tiles    int
	MinZoom  maptile.Zoom
	MaxZoom  maptile.Zoom
	Bounds   orb.Bound
	Metadata *MbtilesMetadata
}

func (s *MbtilesSummary) String() string {
	if s.Tiles == 0 {
		return fmt.Sprintf("%s (%s): empty", s.Name, s.Format)
	}
	return fmt.Sprintf("%s (%s): %d tiles, zoom %d-%d, bounds %v", s.Name, s.Format, s.Tiles, s.MinZoom, s.MaxZoom, s.Bounds)
}

// SummarizeMbtiles reads the metadata table and walks every tile in reader.
func SummarizeMbtiles(reader MbtilesReader) (*MbtilesSummary, error) {
	metadata, err := reader.Metadata()
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var extent tileExtent
	tiles := 0
	err = reader.VisitAllTiles(func(tile maptile.Tile, data []byte) {
		tiles++
		extent.Add(tile)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read tiles: %w", err)
	}

	summary := &MbtilesSummary{
		Name:     metadata.Name(),
		Format:   metadata.Format(),
		Tiles:    tiles,
		Metadata: metadata,
	}

	if !extent.Empty() {
		summary.MinZoom = extent.minZoom
		summary.MaxZoom = extent.maxZoom
		summary.Bounds = *extent.bounds
	}

	return summary, nil
}
