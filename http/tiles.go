package http

import (
	"fmt"
	"log/slog"
	"mime"
	gohttp "net/http"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"

	"github.com/tilezen/go-tilefetch/tilefetch"
)

var (
	tileRegex = regexp.MustCompile(`/\d+/\d+/\d+\.(?:png|jpg|jpeg|webp)$`)
)

// TileReader is the part of tilefetch.MbtilesReader the handler needs.
type TileReader interface {
	GetTile(tile maptile.Tile) (*tilefetch.TileData, error)
}

// TileHandler serves /{z}/{x}/{y}.{format} requests from reader.
func TileHandler(reader TileReader) gohttp.HandlerFunc {
	return func(w gohttp.ResponseWriter, r *gohttp.Request) {
		requestedTile, err := parseTileFromPath(r.URL.Path)
		if err != nil {
			gohttp.NotFound(w, r)
			return
		}

		result, err := reader.GetTile(requestedTile)
		if err != nil {
			slog.Error("error getting tile", "path", r.URL.Path, "error", err)
			gohttp.Error(w, "error getting tile", gohttp.StatusInternalServerError)
			return
		}

		if result.Data == nil {
			gohttp.NotFound(w, r)
			return
		}

		contentType := mime.TypeByExtension(path.Ext(r.URL.Path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(*result.Data)))
		w.Write(*result.Data)
	}
}

func parseTileFromPath(url string) (maptile.Tile, error) {
	match := tileRegex.FindString(url)
	if match == "" {
		return maptile.Tile{}, fmt.Errorf("invalid tile path")
	}

	return tilefetch.ParseTilePath(strings.TrimPrefix(match, "/"))
}
