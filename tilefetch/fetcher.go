package tilefetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

const (
	defaultHTTPTimeout = 60 * time.Second
)

type FetcherOptions struct {
	// Client defaults to a client with a 60 second timeout.
	Client *http.Client
	// Headers default to DefaultHeaders.
	Headers   map[string]string
	Outputter TileOutputter
	// Console receives one "Failed to download" line per failed tile. Defaults to stdout.
	Console io.Writer
	Logger  *slog.Logger
	// FailFast aborts the run on the first transport error instead of skipping the tile.
	FailFast bool
	// OnResult is called once per entry after it has been handled.
	OnResult func(*TileResponse)
}

// Fetcher downloads tiles one at a time and hands successful responses to an outputter.
type Fetcher struct {
	client    *http.Client
	header    http.Header
	outputter TileOutputter
	console   io.Writer
	logger    *slog.Logger
	failFast  bool
	onResult  func(*TileResponse)
}

// NewHTTPClient returns the client used for tile requests. A zero timeout disables it.
func NewHTTPClient(timeout time.Duration) *http.Client {
	httpClient := &http.Client{}
	httpClient.Timeout = timeout
	httpClient.Transport = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 3,
	}
	return httpClient
}

func NewFetcher(opts *FetcherOptions) (*Fetcher, error) {
	if opts.Outputter == nil {
		return nil, errors.New("an outputter is required")
	}

	client := opts.Client
	if client == nil {
		client = NewHTTPClient(defaultHTTPTimeout)
	}

	headers := opts.Headers
	if headers == nil {
		headers = DefaultHeaders()
	}

	header := make(http.Header, len(headers))
	for k, v := range headers {
		header.Set(k, v)
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		client:    client,
		header:    header,
		outputter: opts.Outputter,
		console:   console,
		logger:    logger,
		failFast:  opts.FailFast,
		onResult:  opts.OnResult,
	}, nil
}

// Run fetches every entry in order. HTTP and transport failures are reported
// and skipped; an outputter failure stops the run and is returned.
func (f *Fetcher) Run(ctx context.Context, entries []*TileEntry) error {
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := f.outputter.Prepare(entry); err != nil {
			return fmt.Errorf("failed to prepare %s: %w", entry.Path, err)
		}

		resp := f.Fetch(ctx, &TileRequest{Entry: entry, Header: f.header})

		switch {
		case resp.Err != nil:
			fmt.Fprintf(f.console, "Failed to download %s\n", entry.URL)
			f.logger.Warn("tile request failed", "url", entry.URL, "error", resp.Err)

			if f.failFast {
				f.report(resp)
				return fmt.Errorf("failed to fetch %s: %w", entry.URL, resp.Err)
			}
		case resp.StatusCode != http.StatusOK:
			fmt.Fprintf(f.console, "Failed to download %s\n", entry.URL)
			f.logger.Warn("unexpected tile response", "url", entry.URL, "status", resp.StatusCode)
		default:
			if err := f.outputter.Save(entry, resp.Data); err != nil {
				return fmt.Errorf("failed to save %s: %w", entry.Path, err)
			}
			f.logger.Debug("saved tile", "path", entry.Path, "bytes", len(resp.Data), "elapsed", resp.Elapsed)
		}

		f.report(resp)
	}

	return nil
}

// Fetch performs a single GET. The body is only read for 200 responses.
func (f *Fetcher) Fetch(ctx context.Context, request *TileRequest) *TileResponse {
	start := time.Now()
	resp := &TileResponse{Entry: request.Entry}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, request.Entry.URL, nil)
	if err != nil {
		resp.Err = fmt.Errorf("unable to create HTTP request: %w", err)
		return resp
	}

	for k, v := range request.Header {
		httpReq.Header[k] = v
	}

	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		resp.Err = err
		return resp
	}
	defer httpResp.Body.Close()

	resp.StatusCode = httpResp.StatusCode

	if httpResp.StatusCode == http.StatusOK {
		resp.Data, err = io.ReadAll(httpResp.Body)
		if err != nil {
			resp.Err = fmt.Errorf("error copying bytes from HTTP response: %w", err)
		}
	}

	resp.Elapsed = time.Since(start).Seconds()
	return resp
}

func (f *Fetcher) report(resp *TileResponse) {
	if f.onResult != nil {
		f.onResult(resp)
	}
}
