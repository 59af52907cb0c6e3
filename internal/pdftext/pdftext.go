// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts plain text from downloaded PDFs and normalizes
// scraped strings for identifier derivation.
// Implements: prd005-extraction (R1-R3).
package pdftext

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extract parses data as a PDF and returns its cleaned plain text.
// Pages that fail text extraction are skipped; Extract fails only when
// the document cannot be parsed or yields no text at all.
func Extract(data []byte) (text string, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing pdf: %v", r)
		}
	}()

	br := bytes.NewReader(data)
	reader, err := pdf.NewReader(br, br.Size())
	if err != nil {
		return "", fmt.Errorf("parsing pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteByte('\n')
	}

	cleaned := CleanText(sb.String())
	if cleaned == "" {
		return "", fmt.Errorf("no extractable text")
	}
	return cleaned, nil
}

// ExtractFile reads the PDF at path and extracts its cleaned plain text.
func ExtractFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pdf %s: %w", path, err)
	}
	text, err := Extract(data)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", path, err)
	}
	return text, nil
}

// CleanText strips characters outside the printable ASCII range and
// collapses whitespace runs into single spaces, trimming the ends.
// Titles cleaned this way feed identifier derivation, so the output must
// be stable for a given input across runs.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v':
			pendingSpace = true
		case r > 0x20 && r < 0x7f:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
