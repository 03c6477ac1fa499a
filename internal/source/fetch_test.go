package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

const tsv = "unit,sex,age,geo\\time\t2015 \nPC,F,Y25-64,DE21\t45.2 \n"

func gz(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(b)
}

func TestOpen_LocalPlainAndGzip(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "trng_lfse_04.tsv")
	packed := filepath.Join(dir, "trng_lfse_04.tsv.gz")
	if err := os.WriteFile(plain, []byte(tsv), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(packed, gz(t, tsv), 0o644); err != nil {
		t.Fatal(err)
	}
	f := NewFetcher(0, 1, 0, 0, nil)
	for _, p := range []string{plain, packed} {
		rc, err := f.Open(context.Background(), p)
		if err != nil {
			t.Fatalf("open %s: %v", p, err)
		}
		if got := readAll(t, rc); got != tsv {
			t.Fatalf("%s: got %q", p, got)
		}
	}
}

func TestOpen_MissingLocalFile(t *testing.T) {
	f := NewFetcher(0, 1, 0, 0, nil)
	if _, err := f.Open(context.Background(), filepath.Join(t.TempDir(), "nope.tsv")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestOpen_HTTPGzip(t *testing.T) {
	payload := gz(t, tsv)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 1, 0, 0, nil)
	rc, err := f.Open(context.Background(), srv.URL+"/data/trng_lfse_04.tsv.gz")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := readAll(t, rc); got != tsv {
		t.Fatalf("got %q", got)
	}
}

func TestOpen_NoRetryByDefault(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 1, 0, 0, nil)
	_, err := f.Open(context.Background(), srv.URL)
	var fe *FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected FetchError 503, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("hits = %d, want 1", n)
	}
}

func TestOpen_RetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, tsv)
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 3, time.Millisecond, time.Millisecond, nil)
	var waits []time.Duration
	f.sleep = func(d time.Duration) { waits = append(waits, d) }
	rc, err := f.Open(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := readAll(t, rc); got != tsv {
		t.Fatalf("got %q", got)
	}
	if len(waits) != 2 || waits[0] != time.Second {
		t.Fatalf("unexpected waits: %v", waits)
	}
}

func TestOpen_NotFoundIsNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 3, time.Millisecond, time.Millisecond, nil)
	f.sleep = func(time.Duration) {}
	_, err := f.Open(context.Background(), srv.URL)
	var fe *FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Fatalf("expected FetchError 404, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("hits = %d, want 1", n)
	}
}

func TestIsURL(t *testing.T) {
	if !IsURL(DefaultURL) || !IsURL("HTTP://example.org/x") {
		t.Fatalf("expected URLs to be recognised")
	}
	if IsURL("./trng_lfse_04.tsv.gz") {
		t.Fatalf("local path treated as URL")
	}
}
