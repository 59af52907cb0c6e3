// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const fakePDFContent = "%PDF-1.4 fake"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pdf/good.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, fakePDFContent)
		case "/pdf/broken.pdf":
			http.Error(w, "internal error", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestPDFSuccess(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	dir := t.TempDir()
	path, err := PDF(context.Background(), ts.Client(), "paper.pdf", ts.URL+"/pdf/good.pdf", dir)
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}

	want := filepath.Join(dir, "paper.pdf")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if string(data) != fakePDFContent {
		t.Errorf("content = %q, want %q", string(data), fakePDFContent)
	}
}

func TestPDFCreatesOutputDir(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	dir := filepath.Join(t.TempDir(), "nested", "out")
	path, err := PDF(context.Background(), ts.Client(), "paper.pdf", ts.URL+"/pdf/good.pdf", dir)
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
}

func TestPDFNotFound(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	dir := t.TempDir()
	path, err := PDF(context.Background(), ts.Client(), "missing.pdf", ts.URL+"/pdf/missing.pdf", dir)
	if err != nil {
		t.Fatalf("a 404 must not be an error, got: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty for 404", path)
	}

	// Nothing may be written on a non-200 response.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("output dir should be empty, found %d entries", len(entries))
	}
}

func TestPDFServerError(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	path, err := PDF(context.Background(), ts.Client(), "broken.pdf", ts.URL+"/pdf/broken.pdf", t.TempDir())
	if err != nil {
		t.Fatalf("a 500 must not be an error, got: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty for 500", path)
	}
}

func TestPDFTransportError(t *testing.T) {
	ts := newTestServer(t)
	ts.Close() // connection refused

	_, err := PDF(context.Background(), http.DefaultClient, "paper.pdf", ts.URL+"/pdf/good.pdf", t.TempDir())
	if err == nil {
		t.Fatal("expected transport error")
	}
}

func TestPDFNoTempFileLeftBehind(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	dir := t.TempDir()
	if _, err := PDF(context.Background(), ts.Client(), "paper.pdf", ts.URL+"/pdf/good.pdf", dir); err != nil {
		t.Fatalf("PDF: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly the downloaded file, found %d entries", len(entries))
	}
	if entries[0].Name() != "paper.pdf" {
		t.Errorf("unexpected entry %q", entries[0].Name())
	}
}
