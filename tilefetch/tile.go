package tilefetch

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/maptile"
)

// ErrInvalidTilePath is returned when a path does not look like "{z}/{x}/{y}.{format}".
var ErrInvalidTilePath = errors.New("invalid tile path")

// TileEntry pairs a tile's local destination path with the URL it is fetched from.
type TileEntry struct {
	Tile maptile.Tile
	Path string
	URL  string
}

func (e *TileEntry) String() string {
	return fmt.Sprintf("%s <- %s", e.Path, e.URL)
}

// NewTileEntry builds an entry from a literal relative path and a tile URL.
// The path is used as-is for the destination; it is only parsed to learn the
// tile coordinate.
func NewTileEntry(tilePath string, tileURL string) (*TileEntry, error) {
	t, err := ParseTilePath(tilePath)
	if err != nil {
		return nil, err
	}

	if tileURL == "" {
		return nil, fmt.Errorf("missing URL for %s", tilePath)
	}

	return &TileEntry{
		Tile: t,
		Path: tilePath,
		URL:  tileURL,
	}, nil
}

// EntryFromURL derives the destination path from the path part of a tile URL.
func EntryFromURL(tileURL string) (*TileEntry, error) {
	u, err := url.Parse(tileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tile URL %s: %w", tileURL, err)
	}

	return NewTileEntry(strings.TrimPrefix(path.Clean(u.Path), "/"), tileURL)
}

// ParseTilePath parses a relative "{z}/{x}/{y}.{format}" path.
func ParseTilePath(tilePath string) (maptile.Tile, error) {
	var t maptile.Tile

	if !filepath.IsLocal(filepath.FromSlash(tilePath)) || path.Clean(tilePath) != tilePath {
		return t, fmt.Errorf("%w: %q is not a clean local path", ErrInvalidTilePath, tilePath)
	}

	var z, x, y uint32
	var format string
	if n, err := fmt.Sscanf(tilePath, "%d/%d/%d.%s", &z, &x, &y, &format); err != nil || n != 4 {
		return t, fmt.Errorf("%w: %q", ErrInvalidTilePath, tilePath)
	}

	// %s stops at whitespace only, so compare against the canonical form
	if strings.ContainsAny(format, `/\.`) || fmt.Sprintf("%d/%d/%d.%s", z, x, y, format) != tilePath {
		return t, fmt.Errorf("%w: %q has an invalid format", ErrInvalidTilePath, tilePath)
	}

	if z > 30 {
		return t, fmt.Errorf("%w: zoom %d out of range", ErrInvalidTilePath, z)
	}

	limit := uint32(1) << z
	if x >= limit || y >= limit {
		return t, fmt.Errorf("%w: %d/%d outside zoom %d", ErrInvalidTilePath, x, y, z)
	}

	return maptile.New(x, y, maptile.Zoom(z)), nil
}

// ZipEntries pairs paths and links positionally. Iteration stops at the end of
// the shorter slice.
func ZipEntries(paths []string, links []string) ([]*TileEntry, error) {
	n := min(len(paths), len(links))

	entries := make([]*TileEntry, 0, n)
	for i := 0; i < n; i++ {
		entry, err := NewTileEntry(paths[i], links[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// EntriesFromURLs derives one entry per URL.
func EntriesFromURLs(links []string) ([]*TileEntry, error) {
	entries := make([]*TileEntry, 0, len(links))
	for _, link := range links {
		entry, err := EntryFromURL(link)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
