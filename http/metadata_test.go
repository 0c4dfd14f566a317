package http

import (
	"encoding/json"
	"errors"
	gohttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/tilezen/go-tilefetch/tilefetch"
)

type staticMetadata struct {
	metadata *tilefetch.MbtilesMetadata
	err      error
}

func (s staticMetadata) Metadata() (*tilefetch.MbtilesMetadata, error) {
	return s.metadata, s.err
}

func TestMetadataHandler(t *testing.T) {
	t.Run("metadata rows", func(t *testing.T) {
		reader := staticMetadata{metadata: tilefetch.NewMbtilesMetadata(map[string]string{
			"name":   "launch-site",
			"format": "png",
		})}

		rec := httptest.NewRecorder()
		MetadataHandler(reader)(rec, httptest.NewRequest(gohttp.MethodGet, "/tiles/metadata.json", nil))

		if rec.Code != gohttp.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		var got map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
		}
		if got["name"] != "launch-site" || got["format"] != "png" || len(got) != 2 {
			t.Errorf("Unexpected metadata %v", got)
		}
	})

	t.Run("read error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		MetadataHandler(staticMetadata{err: errors.New("database is locked")})(rec, httptest.NewRequest(gohttp.MethodGet, "/tiles/metadata.json", nil))

		if rec.Code != gohttp.StatusInternalServerError {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}
