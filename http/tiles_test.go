package http

import (
	gohttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb/maptile"

	"github.com/tilezen/go-tilefetch/tilefetch"
)

type mapReader map[maptile.Tile][]byte

func (m mapReader) GetTile(tile maptile.Tile) (*tilefetch.TileData, error) {
	data, ok := m[tile]
	if !ok {
		return &tilefetch.TileData{Tile: tile}, nil
	}
	return &tilefetch.TileData{Tile: tile, Data: &data}, nil
}

func TestTileHandler(t *testing.T) {
	reader := mapReader{
		maptile.New(2262, 3182, 13): []byte("png bytes"),
	}
	handler := TileHandler(reader)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"existing tile", "/13/2262/3182.png", gohttp.StatusOK, "png bytes"},
		{"missing tile", "/13/2262/3183.png", gohttp.StatusNotFound, ""},
		{"bad path", "/tilezen/13/2262", gohttp.StatusNotFound, ""},
		{"out of range", "/1/5/0.png", gohttp.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(gohttp.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantBody != "" {
				if rec.Body.String() != tt.wantBody {
					t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
				}
				if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
					t.Errorf("Content-Type = %q", ct)
				}
			}
		})
	}
}
