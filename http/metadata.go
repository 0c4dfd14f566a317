package http

import (
	"encoding/json"
	"log/slog"
	gohttp "net/http"

	"github.com/tilezen/go-tilefetch/tilefetch"
)

// MetadataReader is the part of tilefetch.MbtilesReader the metadata handler needs.
type MetadataReader interface {
	Metadata() (*tilefetch.MbtilesMetadata, error)
}

// MetadataHandler serves the archive's metadata table as a JSON object.
func MetadataHandler(reader MetadataReader) gohttp.HandlerFunc {
	return func(w gohttp.ResponseWriter, r *gohttp.Request) {
		metadata, err := reader.Metadata()
		if err != nil {
			slog.Error("error reading metadata", "error", err)
			gohttp.Error(w, "error reading metadata", gohttp.StatusInternalServerError)
			return
		}

		body := make(map[string]string, len(metadata.Keys()))
		for _, k := range metadata.Keys() {
			body[k], _ = metadata.Get(k)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			slog.Error("error writing metadata", "error", err)
		}
	}
}
