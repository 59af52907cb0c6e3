// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives listing entries through download, extraction,
// summarization, and persistence, one paper at a time.
// Implements: prd002-pipeline (R1-R5);
//
//	docs/ARCHITECTURE § Pipeline.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// RecordStore is the slice of the record store the pipeline needs.
// Get with found=false means no record exists for the ID.
type RecordStore interface {
	Get(ctx context.Context, id string) (types.PaperRecord, bool, error)
	Insert(ctx context.Context, rec types.PaperRecord) error
	Update(ctx context.Context, id string, updates map[string]any) error
}

// Deps bundles the collaborators for one pipeline run. Download returns
// the stored path, or "" with a nil error when the source answered with
// a non-200 status. Extract turns a stored PDF into cleaned text.
// Summarize produces the digest for (possibly capped) content.
type Deps struct {
	Store     RecordStore
	Download  func(ctx context.Context, filename, url string) (string, error)
	Extract   func(path string) (string, error)
	Summarize func(ctx context.Context, content string) (string, error)
	Log       *zap.Logger
}

// Summary holds counts from one batch run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Total returns the number of entries handled.
func (s Summary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// HasFailures reports whether any papers failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Run processes every listing entry in order, printing per-paper status
// and returning a summary. A single paper's failure never aborts the
// batch. The configured delay separates consecutive papers whatever the
// previous outcome, so the source site sees a steady request rate; a
// canceled context ends the batch at the next delay point.
func Run(ctx context.Context, deps Deps, entries []types.ListingEntry, cfg types.Config, w io.Writer) Summary {
	var summary Summary
	delay := time.Duration(cfg.Scraping.Delay) * time.Second

loop:
	for i, entry := range entries {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				deps.Log.Warn("batch interrupted",
					zap.Int("remaining", len(entries)-i))
				break loop
			case <-time.After(delay):
			}
		}

		skipped, err := ProcessPaper(ctx, deps, entry, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", entry.Title, err)
			deps.Log.Error("paper failed",
				zap.String("title", entry.Title), zap.Error(err))
			summary.Failed++
			continue
		}
		if skipped {
			summary.Skipped++
		} else {
			summary.Processed++
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d processed, %d skipped, %d failed (total: %d)\n",
		summary.Processed, summary.Skipped, summary.Failed, summary.Total())
	return summary
}

// ProcessPaper runs one listing entry through the full stage sequence.
// A record that already carries a summary is skipped; a record without
// one (partial progress from an interrupted run) is reprocessed and
// repaired in place. New records are written only after every stage
// succeeds, so an interrupted paper leaves nothing behind and is retried
// cleanly on the next run.
func ProcessPaper(ctx context.Context, deps Deps, entry types.ListingEntry, cfg types.Config, w io.Writer) (skipped bool, err error) {
	sc := cfg.Scraping
	id, cleanTitle := DeriveID(entry.Title, sc.Conference, sc.Year, sc.Track, sc.SubmissionType, sc.Platform)

	existing, found, err := deps.Store.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("checking store for %s: %w", id, err)
	}
	if found && existing.Processed() {
		fmt.Fprintf(w, "skipped: %s (already summarized)\n", id)
		return true, nil
	}

	fmt.Fprintf(w, "processing: %s\n", id)

	pdfPath, err := deps.Download(ctx, id+".pdf", entry.PDFURL)
	if err != nil {
		return false, fmt.Errorf("downloading: %w", err)
	}
	if pdfPath == "" {
		return false, fmt.Errorf("no PDF available at %s", entry.PDFURL)
	}

	content, err := deps.Extract(pdfPath)
	if err != nil {
		return false, fmt.Errorf("extracting %s: %w", pdfPath, err)
	}
	if limit := cfg.Summarization.ContentCap; limit > 0 && len(content) > limit {
		content = content[:limit]
	}

	digest, err := deps.Summarize(ctx, content)
	if err != nil {
		return false, fmt.Errorf("summarizing: %w", err)
	}

	if found {
		updates := map[string]any{
			"pdf_url":  entry.PDFURL,
			"pdf_path": pdfPath,
			"content":  content,
			"summary":  digest,
		}
		if err := deps.Store.Update(ctx, id, updates); err != nil {
			return false, fmt.Errorf("updating record: %w", err)
		}
		return false, nil
	}

	rec := types.PaperRecord{
		ID:             id,
		Title:          cleanTitle,
		Conference:     sc.Conference,
		Year:           sc.Year,
		Track:          sc.Track,
		SubmissionType: sc.SubmissionType,
		Platform:       sc.Platform,
		PDFURL:         entry.PDFURL,
		PDFPath:        pdfPath,
		Content:        content,
		Summary:        digest,
	}
	if err := deps.Store.Insert(ctx, rec); err != nil {
		return false, fmt.Errorf("inserting record: %w", err)
	}
	return false, nil
}
