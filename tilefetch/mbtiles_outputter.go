package tilefetch

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Register sqlite3 database driver
	"github.com/paulmach/orb/maptile"
)

const (
	batchSize = 1000
)

// NewMbtilesOutputter writes tiles into an MBTiles archive at dsn. The metadata
// rows are written when the outputter is closed.
func NewMbtilesOutputter(dsn string, metadata *MbtilesMetadata) (*mbtilesOutputter, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if metadata == nil {
		metadata = NewMbtilesMetadata(nil)
	}

	if _, ok := metadata.Get("name"); !ok {
		metadata.Set("name", strings.TrimSuffix(filepath.Base(dsn), filepath.Ext(dsn)))
	}

	if _, ok := metadata.Get("format"); !ok {
		metadata.Set("format", "png")
	}

	if _, ok := metadata.Get("type"); !ok {
		metadata.Set("type", "baselayer")
	}

	return &mbtilesOutputter{db: db, metadata: metadata}, nil
}

type mbtilesOutputter struct {
	db         *sql.DB
	txn        *sql.Tx
	batchCount int
	hasTiles   bool
	metadata   *MbtilesMetadata
	extent     tileExtent
}

// flipY converts between XYZ and the TMS row numbering MBTiles uses.
func flipY(t maptile.Tile) uint32 {
	return (uint32(1) << uint32(t.Z)) - 1 - t.Y
}

func (o *mbtilesOutputter) Close() error {
	var err error

	if o.txn != nil {
		err = o.txn.Commit()
		o.txn = nil
	}

	if err == nil {
		err = o.writeMetadata()
	}

	if o.db != nil {
		if err2 := o.db.Close(); err2 != nil {
			err = err2
		}
	}

	return err
}

func (o *mbtilesOutputter) writeMetadata() error {
	if !o.hasTiles {
		return nil
	}

	o.extent.Apply(o.metadata)

	for _, k := range o.metadata.Keys() {
		v, _ := o.metadata.Get(k)
		if _, err := o.db.Exec("INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?);", k, v); err != nil {
			return err
		}
	}

	return nil
}

func (o *mbtilesOutputter) CreateTiles() error {
	if o.hasTiles {
		return nil
	}
	if _, err := o.db.Exec(`
		BEGIN TRANSACTION;
		CREATE TABLE IF NOT EXISTS map (
			zoom_level INTEGER NOT NULL,
			tile_column INTEGER NOT NULL,
			tile_row INTEGER NOT NULL,
			tile_id TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS map_index ON map (zoom_level, tile_column, tile_row);
		CREATE TABLE IF NOT EXISTS images (
			tile_data BLOB NOT NULL,
			tile_id TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS images_id ON images (tile_id);
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT,
			value TEXT
		);
		CREATE UNIQUE INDEX IF NOT EXISTS name ON metadata (name);
		CREATE VIEW IF NOT EXISTS tiles AS
		SELECT
			map.zoom_level AS zoom_level,
			map.tile_column AS tile_column,
			map.tile_row AS tile_row,
			images.tile_data AS tile_data
		FROM map
		JOIN images ON images.tile_id = map.tile_id;
		COMMIT;
	`); err != nil {
		return err
	}
	o.hasTiles = true
	return nil
}

func (o *mbtilesOutputter) Prepare(entry *TileEntry) error {
	return nil
}

func (o *mbtilesOutputter) Save(entry *TileEntry, data []byte) error {
	if err := o.CreateTiles(); err != nil {
		return err
	}

	if o.txn == nil {
		tx, err := o.db.Begin()
		if err != nil {
			return err
		}
		o.txn = tx
	}

	hash := md5.Sum(data)
	tileID := hex.EncodeToString(hash[:])

	_, err := o.txn.Exec("INSERT OR REPLACE INTO images (tile_id, tile_data) VALUES (?, ?);", tileID, data)
	if err != nil {
		return err
	}

	t := entry.Tile
	_, err = o.txn.Exec("INSERT OR REPLACE INTO map (zoom_level, tile_column, tile_row, tile_id) VALUES (?, ?, ?, ?);", t.Z, t.X, flipY(t), tileID)
	if err != nil {
		return err
	}

	o.extent.Add(t)
	o.batchCount++

	if o.batchCount%batchSize == 0 {
		err := o.txn.Commit()
		if err != nil {
			return err
		}
		o.batchCount = 0
		o.txn = nil
	}

	return nil
}
