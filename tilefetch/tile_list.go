package tilefetch

const (
	defaultUserAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:15.0) Gecko/20100101 Firefox/15.0.1"
	defaultReferer   = "https://www.openstreetmap.org/"
)

// Tiles around the launch site at zoom 13, spread over the a/b/c mirrors.
var defaultTileURLs = []string{
	"https://c.tile.openstreetmap.org/13/2262/3182.png",
	"https://a.tile.openstreetmap.org/13/2263/3182.png",
	"https://b.tile.openstreetmap.org/13/2262/3181.png",
	"https://c.tile.openstreetmap.org/13/2263/3181.png",
	"https://a.tile.openstreetmap.org/13/2262/3183.png",
	"https://b.tile.openstreetmap.org/13/2263/3183.png",
	"https://b.tile.openstreetmap.org/13/2261/3182.png",
	"https://a.tile.openstreetmap.org/13/2261/3181.png",
	"https://a.tile.openstreetmap.org/13/2260/3182.png",
	"https://c.tile.openstreetmap.org/13/2260/3181.png",
	"https://b.tile.openstreetmap.org/13/2260/3183.png",
	"https://a.tile.openstreetmap.org/13/2260/3185.png",
	"https://c.tile.openstreetmap.org/13/2260/3184.png",
	"https://c.tile.openstreetmap.org/13/2261/3183.png",
	"https://b.tile.openstreetmap.org/13/2261/3185.png",
	"https://a.tile.openstreetmap.org/13/2261/3184.png",
	"https://c.tile.openstreetmap.org/13/2262/3185.png",
	"https://b.tile.openstreetmap.org/13/2262/3184.png",
	"https://a.tile.openstreetmap.org/13/2263/3185.png",
	"https://c.tile.openstreetmap.org/13/2263/3184.png",
	"https://a.tile.openstreetmap.org/13/2264/3181.png",
	"https://b.tile.openstreetmap.org/13/2264/3182.png",
	"https://c.tile.openstreetmap.org/13/2264/3183.png",
	"https://a.tile.openstreetmap.org/13/2264/3184.png",
	"https://b.tile.openstreetmap.org/13/2264/3185.png",
	"https://a.tile.openstreetmap.org/13/2265/3183.png",
	"https://c.tile.openstreetmap.org/13/2265/3182.png",
	"https://b.tile.openstreetmap.org/13/2265/3184.png",
	"https://c.tile.openstreetmap.org/13/2265/3185.png",
}

// DefaultHeaders returns the request headers sent with every tile request.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent": defaultUserAgent,
		"Referer":    defaultReferer,
	}
}

// DefaultEntries returns the built-in tile list.
func DefaultEntries() []*TileEntry {
	entries, err := EntriesFromURLs(defaultTileURLs)
	if err != nil {
		panic(err)
	}
	return entries
}
