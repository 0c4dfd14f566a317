package tilefetch

type TileOutputter interface {
	CreateTiles() error
	Prepare(entry *TileEntry) error
	Save(entry *TileEntry, data []byte) error
	Close() error
}
