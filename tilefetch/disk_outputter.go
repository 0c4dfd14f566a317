package tilefetch

import (
	"errors"
	"os"
	"path/filepath"
)

type diskOutputter struct {
	root     string
	hasTiles bool
}

// NewDiskOutputter writes each tile to root joined with the entry's literal path.
func NewDiskOutputter(dsn string) (*diskOutputter, error) {
	if dsn == "" {
		dsn = "."
	}

	root, err := filepath.Abs(dsn)
	if err != nil {
		return nil, err
	}

	return &diskOutputter{root: root}, nil
}

func (o *diskOutputter) Close() error {
	return nil
}

func (o *diskOutputter) CreateTiles() error {
	if o.hasTiles {
		return nil
	}

	info, err := os.Stat(o.root)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}

		if err := os.MkdirAll(o.root, 0755); err != nil {
			return err
		}
	} else if !info.IsDir() {
		return errors.New("root is already a file")
	}

	o.hasTiles = true
	return nil
}

func (o *diskOutputter) tilePath(entry *TileEntry) string {
	return filepath.Join(o.root, filepath.FromSlash(entry.Path))
}

// Prepare creates the tile's parent directories. It is a no-op when they exist.
func (o *diskOutputter) Prepare(entry *TileEntry) error {
	return os.MkdirAll(filepath.Dir(o.tilePath(entry)), 0755)
}

func (o *diskOutputter) Save(entry *TileEntry, data []byte) error {
	if err := o.Prepare(entry); err != nil {
		return err
	}

	fh, err := os.OpenFile(o.tilePath(entry), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer fh.Close()

	if _, err = fh.Write(data); err != nil {
		return err
	}

	return fh.Close()
}
