package tilefetch

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/protomaps/go-pmtiles/pmtiles"
)

func TestPmtilesOutputter(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tiles.pmtiles")

	o, err := NewPmtilesOutputter(dsn, NewMbtilesMetadata(map[string]string{"name": "launch site"}))
	if err != nil {
		t.Fatalf("NewPmtilesOutputter failed: %v", err)
	}

	entries := DefaultEntries()
	want := make(map[uint64][]byte, len(entries))
	for i, entry := range entries {
		// every other tile shares contents
		data := []byte{byte(i % 2), 'p', 'n', 'g'}
		if err := o.Save(entry, data); err != nil {
			t.Fatalf("Save %s failed: %v", entry.Path, err)
		}
		want[pmtiles.ZxyToID(uint8(entry.Tile.Z), entry.Tile.X, entry.Tile.Y)] = data
	}

	// a second save of the same tile replaces it
	first := entries[0].Tile
	if err := o.Save(entries[0], []byte("again")); err != nil {
		t.Fatalf("Save of an existing tile failed: %v", err)
	}
	want[pmtiles.ZxyToID(uint8(first.Z), first.X, first.Y)] = []byte("again")

	if len(o.offsetMap) != 3 {
		t.Fatalf("Expected 3 distinct tile contents, got %d", len(o.offsetMap))
	}

	if err := o.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if o.header.MinZoom != 13 || o.header.MaxZoom != 13 {
		t.Errorf("zoom range = %d-%d", o.header.MinZoom, o.header.MaxZoom)
	}

	for i := 1; i < len(o.entries); i++ {
		if o.entries[i-1].TileID >= o.entries[i].TileID {
			t.Fatalf("entries not sorted by tile id")
		}
	}

	b, err := os.ReadFile(dsn)
	if err != nil {
		t.Fatal(err)
	}

	header, err := pmtiles.DeserializeHeader(b[:pmtiles.HeaderV3LenBytes])
	if err != nil {
		t.Fatalf("DeserializeHeader failed: %v", err)
	}

	t.Run("header", func(t *testing.T) {
		if header.SpecVersion != 3 || header.TileType != pmtiles.Png {
			t.Errorf("Unexpected header %+v", header)
		}
		if header.AddressedTilesCount != uint64(len(entries)) || header.TileEntriesCount != uint64(len(entries)) {
			t.Errorf("addressed tiles = %d, entries = %d", header.AddressedTilesCount, header.TileEntriesCount)
		}
		if header.TileContentsCount != 3 {
			t.Errorf("tile contents = %d", header.TileContentsCount)
		}
		if header.LeafDirectoryLength != 0 {
			t.Errorf("Expected a root-only directory, got %d leaf bytes", header.LeafDirectoryLength)
		}
		if uint64(len(b)) != header.TileDataOffset+header.TileDataLength {
			t.Errorf("archive is %d bytes, header says %d", len(b), header.TileDataOffset+header.TileDataLength)
		}
		if header.TileDataLength != 13 {
			t.Errorf("Expected tile data of 13 bytes, got %d", header.TileDataLength)
		}
	})

	t.Run("tiles", func(t *testing.T) {
		rootBytes := b[header.RootOffset : header.RootOffset+header.RootLength]
		root := pmtiles.DeserializeEntries(bytes.NewBuffer(rootBytes), header.InternalCompression)
		if len(root) != len(entries) {
			t.Fatalf("Root directory has %d entries, want %d", len(root), len(entries))
		}

		for id, data := range want {
			e, ok := pmtiles.FindTile(root, id)
			if !ok {
				t.Fatalf("Tile %d missing from root directory", id)
			}

			start := header.TileDataOffset + e.Offset
			got := b[start : start+uint64(e.Length)]
			if !bytes.Equal(got, data) {
				t.Errorf("Tile %d = %q, want %q", id, got, data)
			}
		}
	})
}
