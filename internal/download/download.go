// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download fetches single binary artifacts over HTTP.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

const userAgent = "paper-digest/0.1"

// PDF issues one GET for url and writes the body to outputDir/filename,
// creating outputDir if needed. A non-200 status is not an error: PDF
// returns an empty path and writes nothing, and the caller decides whether
// that is fatal for the paper. Transport failures return an error.
// There is no retry at this layer.
func PDF(ctx context.Context, client *http.Client, filename, url, outputDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	destPath := filepath.Join(outputDir, filename)

	// Write to a temp file and rename, so an interrupted run never leaves
	// a half-written PDF at the final path.
	tmpFile, err := os.CreateTemp(outputDir, ".download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return destPath, nil
}
