package tilefetch

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/psanford/sqlite3vfs"
	"github.com/psanford/sqlite3vfshttp"
)

var remoteVFSCount atomic.Uint64

// NewRemoteMbtilesReader opens an MBTiles archive served over HTTP. Pages are
// read on demand with range requests, so the server must support them.
func NewRemoteMbtilesReader(url string) (MbtilesReader, error) {
	vfs := sqlite3vfshttp.HttpVFS{URL: url}

	// sqlite keeps registered VFSes for the life of the process
	name := fmt.Sprintf("httpvfs-%d", remoteVFSCount.Add(1))
	if err := sqlite3vfs.RegisterVFS(name, &vfs); err != nil {
		return nil, fmt.Errorf("failed to register http vfs for %s: %w", url, err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("not_a_read_name.db?vfs=%s&mode=ro", name))
	if err != nil {
		return nil, fmt.Errorf("failed to open remote mbtiles %s: %w", url, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open remote mbtiles %s: %w", url, err)
	}

	return NewMbtilesReaderWithDatabase(db)
}
