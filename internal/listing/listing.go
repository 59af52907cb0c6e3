// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package listing discovers paper entries on conference listing sites.
// It owns the browser automation session, the scroll and pagination walk,
// and all retry policy for the harvest stage.
// Implements: prd001-listing (R1-R6);
//
//	docs/ARCHITECTURE § Listing.
package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// ErrUnsupportedPlatform is returned by NewSource for platforms other
// than OpenReview. It surfaces before any browser work starts (R1.1).
var ErrUnsupportedPlatform = errors.New("unsupported listing platform")

// Source produces the complete ordered sequence of paper entries visible
// across all pages of a conference listing.
type Source interface {
	// Name returns the platform name.
	Name() string

	// Fetch walks every page of the listing and returns the entries in
	// site order. Duplicates across pages are not removed here; identity
	// belongs to the derived record ID downstream.
	Fetch(ctx context.Context) ([]types.ListingEntry, error)
}

// NewSource returns the listing source for the configured platform.
// Platform matching is case-insensitive.
func NewSource(cfg types.ScrapingConfig, log *zap.Logger) (Source, error) {
	switch strings.ToLower(cfg.Platform) {
	case platformOpenReview:
		return newOpenReview(cfg, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, cfg.Platform)
	}
}

// ScrapeError reports that a listing could not be retrieved after
// exhausting every session attempt. It wraps the last attempt's error.
type ScrapeError struct {
	Attempts int
	Err      error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("listing scrape failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }
