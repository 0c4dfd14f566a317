package tilefetch

import "net/http"

type TileRequest struct {
	Entry  *TileEntry
	Header http.Header
}

type TileResponse struct {
	Entry      *TileEntry
	StatusCode int
	Data       []byte
	Elapsed    float64
	Err        error
}

// OK reports whether the tile was fetched and can be saved.
func (r *TileResponse) OK() bool {
	return r.Err == nil && r.StatusCode == http.StatusOK
}
