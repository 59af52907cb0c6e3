// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain ascii unchanged",
			in:   "Attention Is All You Need",
			want: "Attention Is All You Need",
		},
		{
			name: "strips non-ascii",
			in:   "Müller's Théorem",
			want: "Mller's Thorem",
		},
		{
			name: "collapses whitespace runs",
			in:   "Deep   Learning\t\tfor\n\nGraphs",
			want: "Deep Learning for Graphs",
		},
		{
			name: "trims leading and trailing whitespace",
			in:   "  \n Robust Scaling \t ",
			want: "Robust Scaling",
		},
		{
			name: "strips control characters",
			in:   "A\x00B\x07C",
			want: "ABC",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "whitespace only",
			in:   " \t\n ",
			want: "",
		},
		{
			name: "emoji and cjk stripped without joining words",
			in:   "Learning 深層 Representations 🚀",
			want: "Learning Representations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.in)
			if got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanTextStable(t *testing.T) {
	in := "  Stochastic   Gradient  Descent © 2024  "
	first := CleanText(in)
	second := CleanText(first)
	if first != second {
		t.Errorf("CleanText is not idempotent: %q then %q", first, second)
	}
}

func TestExtractNotAPDF(t *testing.T) {
	if _, err := Extract([]byte("this is not a pdf")); err == nil {
		t.Fatal("expected error for non-pdf content")
	}
}

func TestExtractEmptyInput(t *testing.T) {
	if _, err := Extract(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestExtractFileMissing(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "nope.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExtractFileGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 truncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ExtractFile(path); err == nil {
		t.Fatal("expected error for truncated pdf")
	}
}
