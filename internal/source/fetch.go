// Package source opens the Eurostat bulk download, either over HTTP or from
// a local copy, and undoes gzip compression when present.
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// DefaultURL is the Eurostat bulk download of trng_lfse_04.
const DefaultURL = "https://ec.europa.eu/eurostat/estat-navtree-portlet-prod/BulkDownloadListing?file=data/trng_lfse_04.tsv.gz"

// Fetcher opens source tables.
type Fetcher struct {
	HTTPClient  *http.Client
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Logger      *zap.Logger

	sleep func(time.Duration)
}

// NewFetcher returns a fetcher with the given HTTP timeout (0 means none)
// and retry policy. maxAttempts <= 1 disables retries.
func NewFetcher(timeout time.Duration, maxAttempts int, baseDelay, maxDelay time.Duration, logger *zap.Logger) *Fetcher {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 4 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		HTTPClient:  &http.Client{Timeout: timeout},
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		Logger:      logger,
	}
}

// IsURL reports whether location is fetched over HTTP.
func IsURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Open returns the decompressed contents of location. The caller must close it.
func (f *Fetcher) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	if IsURL(location) {
		rc, err = f.get(ctx, location)
	} else {
		rc, err = os.Open(location)
		if err != nil {
			err = fmt.Errorf("open source: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}
	return maybeGunzip(rc)
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	client := f.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	maxAttempts := f.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	backoff := f.BaseDelay
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	sleep := f.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", "eurostat-enrollment")
		logger.Debug("fetching source", zap.String("url", rawURL), zap.Int("attempt", attempt))

		resp, err := client.Do(req)
		if err != nil {
			if isRetryableNetErr(err) && attempt < maxAttempts {
				lastErr = err
				logger.Warn("fetch failed, retrying", zap.Error(err), zap.Duration("backoff", backoff))
				sleep(f.capDelay(withJitter(backoff)))
				backoff *= 2
				continue
			}
			return nil, fmt.Errorf("http request: %w", err)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp.Body, nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
		fe := &FetchError{URL: redact(rawURL), StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if !fe.Retryable() || attempt == maxAttempts {
			return nil, fe
		}
		lastErr = fe
		wait := f.capDelay(withJitter(backoff))
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := parseRetryAfterSeconds(ra); err == nil && secs > 0 {
				wait = time.Duration(secs) * time.Second
			}
		}
		logger.Warn("fetch returned retryable status", zap.Int("status", resp.StatusCode), zap.Duration("wait", wait))
		sleep(wait)
		backoff *= 2
	}
	return nil, lastErr
}

func (f *Fetcher) capDelay(d time.Duration) time.Duration {
	if f.MaxDelay > 0 && d > f.MaxDelay {
		return f.MaxDelay
	}
	return d
}

type gzipReadCloser struct {
	*gzip.Reader
	src io.Closer
}

func (g gzipReadCloser) Close() error {
	err := g.Reader.Close()
	if cerr := g.src.Close(); err == nil {
		err = cerr
	}
	return err
}

type bufferedReadCloser struct {
	*bufio.Reader
	io.Closer
}

// maybeGunzip sniffs the gzip magic bytes and decompresses when present.
func maybeGunzip(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		_ = rc.Close()
		return nil, fmt.Errorf("read source: %w", err)
	}
	if !bytes.Equal(magic, []byte{0x1f, 0x8b}) {
		return bufferedReadCloser{Reader: br, Closer: rc}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	return gzipReadCloser{Reader: zr, src: rc}, nil
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// parseRetryAfterSeconds interprets Retry-After as seconds or an HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	// +/-20%
	j := time.Duration(rand.Int63n(int64(d)/5*2+1)) - d/5
	return d + j
}

// redact drops userinfo from u for error messages.
func redact(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	return parsed.Redacted()
}
