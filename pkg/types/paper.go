// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-digest pipeline.
// Implements: prd001-listing (ListingEntry, R6.1);
//
//	prd002-pipeline (PaperRecord, R3.1-R3.4);
//	prd004-store (Config sections, R1.1).
package types

// PaperRecord holds everything persisted for one harvested paper.
// Per prd002-pipeline R3.1: provenance fields are immutable after creation;
// a non-empty Summary marks the paper as fully processed.
type PaperRecord struct {
	// ID is derived from the normalized title plus the provenance fields.
	// It is the primary key and the resume/dedup key across runs.
	ID string `json:"id" yaml:"id"`

	// Title is the cleaned paper title, normalized the same way as the ID.
	Title string `json:"title" yaml:"title"`

	// Conference, Year, Track, SubmissionType, and Platform record where
	// the paper was harvested from.
	Conference     string `json:"conference" yaml:"conference"`
	Year           int    `json:"year" yaml:"year"`
	Track          string `json:"track" yaml:"track"`
	SubmissionType string `json:"submission_type,omitempty" yaml:"submission_type,omitempty"`
	Platform       string `json:"platform" yaml:"platform"`

	// PDFURL is the source locator for the paper PDF.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// PDFPath is the local filesystem path to the downloaded PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// Content is the extracted and cleaned text, truncated to the
	// configured cap when one is set.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// Summary is the model-generated digest. Empty means the paper still
	// needs processing on the next run.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Processed reports whether the record represents completed work.
// Records with an empty summary are partial progress from an interrupted
// run and must be reprocessed, not skipped.
func (p PaperRecord) Processed() bool {
	return p.Summary != ""
}

// ListingEntry is one (title, PDF URL) pair scraped from a listing page.
// Entries are transient; identity comes from the derived record ID, so
// duplicates across pages are resolved by the pipeline, not the scraper.
type ListingEntry struct {
	Title  string `json:"title" yaml:"title"`
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`
}
