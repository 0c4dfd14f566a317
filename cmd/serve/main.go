package main

import (
	"flag"
	"log"
	gohttp "net/http"
	"os"
	"strings"
	"time"

	"github.com/tilezen/go-tilefetch/http"
	"github.com/tilezen/go-tilefetch/tilefetch"
)

func loggingMiddleware(logger *log.Logger) func(gohttp.Handler) gohttp.Handler {
	return func(next gohttp.Handler) gohttp.Handler {
		return gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
			defer func() {
				logger.Println(r.Method, r.URL.Path, r.RemoteAddr, r.UserAgent())
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func main() {
	input := flag.String("input", ".", "An .mbtiles archive, an http(s) URL of one, or a directory of {z}/{x}/{y}.png tiles to serve.")
	addr := flag.String("listen", ":8080", "The address and port to listen on")
	flag.Parse()

	logger := log.New(os.Stdout, "http: ", log.LstdFlags)

	var reader tilefetch.MbtilesReader
	var err error
	if strings.HasPrefix(*input, "http") {
		reader, err = tilefetch.NewRemoteMbtilesReader(*input)
		if err != nil {
			logger.Fatalf("Couldn't open remote mbtiles, %v", err)
		}

		// walking every tile over range requests is too slow for startup
		metadata, err := reader.Metadata()
		if err != nil {
			logger.Fatalf("Couldn't read metadata from %s, %v", *input, err)
		}
		logger.Printf("Remote archive %s (%s)", metadata.Name(), metadata.Format())
	} else if strings.HasSuffix(*input, ".mbtiles") {
		reader, err = tilefetch.NewMbtilesReader(*input)
		if err != nil {
			logger.Fatalf("Couldn't create MbtilesReader, %v", err)
		}

		summary, err := tilefetch.SummarizeMbtiles(reader)
		if err != nil {
			logger.Fatalf("Couldn't read %s, %v", *input, err)
		}
		logger.Printf("Archive %s", summary)
	}

	var tileHandler gohttp.Handler
	if reader != nil {
		defer reader.Close()
		tileHandler = http.TileHandler(reader)
	} else {
		info, err := os.Stat(*input)
		if err != nil || !info.IsDir() {
			logger.Fatalf("Input %s is neither an .mbtiles file nor a directory", *input)
		}

		tileHandler = gohttp.FileServer(gohttp.Dir(*input))
	}

	router := gohttp.NewServeMux()
	router.Handle("/tiles/", gohttp.StripPrefix("/tiles", tileHandler))
	if reader != nil {
		router.Handle("/tiles/metadata.json", http.MetadataHandler(reader))
	}
	router.HandleFunc("/", defaultHandler)

	server := &gohttp.Server{
		Addr:         *addr,
		Handler:      loggingMiddleware(logger)(router),
		ErrorLog:     logger,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	logger.Printf("Serving %s on %s", *input, *addr)

	if err := server.ListenAndServe(); err != nil && err != gohttp.ErrServerClosed {
		logger.Fatalf("Could not listen on %s: %v\n", *addr, err)
	}
}

func defaultHandler(w gohttp.ResponseWriter, r *gohttp.Request) {
	gohttp.NotFound(w, r)
}
