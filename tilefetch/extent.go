package tilefetch

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// tileExtent accumulates the geographic bounds and zoom range of saved tiles.
type tileExtent struct {
	bounds  *orb.Bound
	minZoom maptile.Zoom
	maxZoom maptile.Zoom
}

func (e *tileExtent) Add(t maptile.Tile) {
	tb := t.Bound()

	if e.bounds == nil {
		e.bounds = &tb
		e.minZoom = t.Z
		e.maxZoom = t.Z
		return
	}

	tb = e.bounds.Union(tb)
	e.bounds = &tb
	e.minZoom = min(e.minZoom, t.Z)
	e.maxZoom = max(e.maxZoom, t.Z)
}

func (e *tileExtent) Empty() bool {
	return e.bounds == nil
}

func (e *tileExtent) Apply(metadata *MbtilesMetadata) {
	if e.Empty() {
		return
	}

	metadata.SetBounds(*e.bounds)
	metadata.SetCenter(e.bounds.Center(), e.minZoom)
	metadata.SetZoomRange(e.minZoom, e.maxZoom)
}
