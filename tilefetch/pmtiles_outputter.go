package tilefetch

import (
	"fmt"
	"hash"
	"hash/fnv"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/RoaringBitmap/roaring/roaring64"
	"github.com/protomaps/go-pmtiles/pmtiles"
)

type offsetLen struct {
	offset uint64
	length uint32
}

// pmtilesOutputter spools tile contents to a temp file and assembles the
// archive on Close.
type pmtilesOutputter struct {
	tileset   *roaring64.Bitmap
	hashFunc  hash.Hash
	offsetMap map[string]offsetLen
	tileData  *os.File
	entries   []pmtiles.EntryV3
	entryAt   map[uint64]int
	header    pmtiles.HeaderV3
	metadata  *MbtilesMetadata
	extent    tileExtent
	outFile   *os.File
}

func NewPmtilesOutputter(dsn string, metadata *MbtilesMetadata) (*pmtilesOutputter, error) {
	tmpFile, err := os.CreateTemp("", "pmtiles-tiledata")
	if err != nil {
		return nil, fmt.Errorf("error creating temp file: %w", err)
	}

	outFile, err := os.Create(dsn)
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return nil, fmt.Errorf("error creating pmtiles output file: %w", err)
	}

	if metadata == nil {
		metadata = NewMbtilesMetadata(nil)
	}

	outputter := &pmtilesOutputter{
		outFile:   outFile,
		tileset:   roaring64.New(),
		hashFunc:  fnv.New128a(),
		tileData:  tmpFile,
		offsetMap: make(map[string]offsetLen),
		entries:   make([]pmtiles.EntryV3, 0),
		entryAt:   make(map[uint64]int),
		metadata:  metadata,
		header: pmtiles.HeaderV3{
			SpecVersion:         3,
			TileType:            pmtiles.Png,
			TileCompression:     pmtiles.NoCompression,
			InternalCompression: pmtiles.Gzip,
		},
	}
	return outputter, nil
}

func (p *pmtilesOutputter) CreateTiles() error {
	return nil
}

func (p *pmtilesOutputter) Prepare(entry *TileEntry) error {
	return nil
}

// Save stores the tile contents. Saving a tile that is already in the archive
// replaces its contents, the same as overwriting a file on disk.
func (p *pmtilesOutputter) Save(entry *TileEntry, data []byte) error {
	tile := entry.Tile
	id := pmtiles.ZxyToID(uint8(tile.Z), tile.X, tile.Y)

	// Identical tile contents are stored once
	p.hashFunc.Reset()
	p.hashFunc.Write(data)
	sumString := string(p.hashFunc.Sum(nil))
	found, ok := p.offsetMap[sumString]

	if !ok {
		offset, err := p.tileData.Seek(0, io.SeekEnd)
		if err != nil {
			return err
		}

		bytesWritten, err := p.tileData.Write(data)
		if err != nil {
			return err
		}

		found = offsetLen{
			offset: uint64(offset),
			length: uint32(bytesWritten),
		}
		p.offsetMap[sumString] = found
	}

	if p.tileset.Contains(id) {
		slog.Debug("replacing tile in pmtiles archive", "tile", entry.Path)
		i := p.entryAt[id]
		p.entries[i].Offset = found.offset
		p.entries[i].Length = found.length
		return nil
	}
	p.tileset.Add(id)

	p.entryAt[id] = len(p.entries)
	p.entries = append(p.entries, pmtiles.EntryV3{
		TileID:    id,
		Offset:    found.offset,
		Length:    found.length,
		RunLength: 1,
	})
	p.extent.Add(tile)

	return nil
}

func (p *pmtilesOutputter) applyExtent() {
	if p.extent.Empty() {
		return
	}

	b := *p.extent.bounds
	center := b.Center()

	p.header.MinZoom = uint8(p.extent.minZoom)
	p.header.MaxZoom = uint8(p.extent.maxZoom)
	p.header.CenterZoom = uint8(p.extent.minZoom)
	p.header.MinLonE7 = int32(b.Min.X() * 10000000)
	p.header.MinLatE7 = int32(b.Min.Y() * 10000000)
	p.header.MaxLonE7 = int32(b.Max.X() * 10000000)
	p.header.MaxLatE7 = int32(b.Max.Y() * 10000000)
	p.header.CenterLonE7 = int32(center.X() * 10000000)
	p.header.CenterLatE7 = int32(center.Y() * 10000000)
}

func (p *pmtilesOutputter) Close() error {
	defer func() {
		p.tileData.Close()
		os.Remove(p.tileData.Name())
	}()
	defer p.outFile.Close()

	sort.Slice(p.entries, func(i, j int) bool {
		return p.entries[i].TileID < p.entries[j].TileID
	})

	p.header.AddressedTilesCount = p.tileset.GetCardinality()
	p.header.TileEntriesCount = uint64(len(p.entries))
	p.header.TileContentsCount = countContents(p.entries)
	p.applyExtent()

	rootBytes, leavesBytes, numLeaves := optimizeDirectories(p.entries, 16384-pmtiles.HeaderV3LenBytes, p.header.InternalCompression)
	slog.Debug("pmtiles directories", "tiles", p.tileset.GetCardinality(), "root_bytes", len(rootBytes), "leaf_bytes", len(leavesBytes), "leaves", numLeaves)

	jsonMetadata := make(map[string]interface{})
	for _, k := range p.metadata.Keys() {
		v, _ := p.metadata.Get(k)
		jsonMetadata[k] = v
	}

	metadataBytes, err := pmtiles.SerializeMetadata(jsonMetadata, p.header.InternalCompression)
	if err != nil {
		return fmt.Errorf("error serializing pmtiles metadata: %w", err)
	}

	tileDataLength, err := p.tileData.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}

	p.header.RootOffset = pmtiles.HeaderV3LenBytes
	p.header.RootLength = uint64(len(rootBytes))
	p.header.MetadataOffset = p.header.RootOffset + p.header.RootLength
	p.header.MetadataLength = uint64(len(metadataBytes))
	p.header.LeafDirectoryOffset = p.header.MetadataOffset + p.header.MetadataLength
	p.header.LeafDirectoryLength = uint64(len(leavesBytes))
	p.header.TileDataOffset = p.header.LeafDirectoryOffset + p.header.LeafDirectoryLength
	p.header.TileDataLength = uint64(tileDataLength)

	if _, err = p.outFile.Write(pmtiles.SerializeHeader(p.header)); err != nil {
		return fmt.Errorf("error writing pmtiles header: %w", err)
	}

	if _, err = p.outFile.Write(rootBytes); err != nil {
		return fmt.Errorf("error writing pmtiles root directory: %w", err)
	}

	if _, err = p.outFile.Write(metadataBytes); err != nil {
		return fmt.Errorf("error writing pmtiles metadata: %w", err)
	}

	if _, err = p.outFile.Write(leavesBytes); err != nil {
		return fmt.Errorf("error writing pmtiles leaf directory: %w", err)
	}

	if _, err = p.tileData.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("error seeking to start of tile data: %w", err)
	}

	if _, err = io.Copy(p.outFile, p.tileData); err != nil {
		return fmt.Errorf("error copying tile data to outfile: %w", err)
	}

	return p.outFile.Close()
}

// countContents counts the distinct tile blobs referenced by entries. A
// replaced tile can leave unreferenced bytes behind in the tile data.
func countContents(entries []pmtiles.EntryV3) uint64 {
	offsets := make(map[uint64]struct{}, len(entries))
	for _, e := range entries {
		offsets[e.Offset] = struct{}{}
	}
	return uint64(len(offsets))
}

func optimizeDirectories(entries []pmtiles.EntryV3, targetRootLen int, compression pmtiles.Compression) ([]byte, []byte, int) {
	if len(entries) < 16384 {
		testRootBytes := pmtiles.SerializeEntries(entries, compression)
		if len(testRootBytes) <= targetRootLen {
			return testRootBytes, make([]byte, 0), 0
		}
	}

	// Root directory is leaf pointers only; grow the leaves until the root fits
	leafSize := float32(len(entries)) / 3500
	if leafSize < 4096 {
		leafSize = 4096
	}

	for {
		rootBytes, leavesBytes, numLeaves := buildRootsLeaves(entries, int(leafSize), compression)
		if len(rootBytes) <= targetRootLen {
			return rootBytes, leavesBytes, numLeaves
		}
		leafSize *= 1.2
	}
}

func buildRootsLeaves(entries []pmtiles.EntryV3, leafSize int, compression pmtiles.Compression) ([]byte, []byte, int) {
	rootEntries := make([]pmtiles.EntryV3, 0)
	leavesBytes := make([]byte, 0)
	numLeaves := 0

	for i := 0; i < len(entries); i += leafSize {
		numLeaves++
		end := min(i+leafSize, len(entries))
		serialized := pmtiles.SerializeEntries(entries[i:end], compression)

		rootEntries = append(rootEntries, pmtiles.EntryV3{
			TileID:    entries[i].TileID,
			Offset:    uint64(len(leavesBytes)),
			Length:    uint32(len(serialized)),
			RunLength: 0,
		})
		leavesBytes = append(leavesBytes, serialized...)
	}

	rootBytes := pmtiles.SerializeEntries(rootEntries, compression)
	return rootBytes, leavesBytes, numLeaves
}
