// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	platformOpenReview = "openreview"

	openReviewBase = "https://openreview.net"

	// defaultMaxRetries bounds full-session attempts on the listing (R4.1).
	defaultMaxRetries = 3

	// maxScrollRounds caps scroll-to-exhaustion so infinite-scroll pages
	// cannot stall an attempt forever (R3.2).
	maxScrollRounds = 10

	noteSelector      = ".note"
	titleSelector     = "h4"
	pdfLinkSelector   = `a[title="Download PDF"]`
	nextArrowSelector = "li.right-arrow"
)

// Timing knobs for the page walk. Package vars so tests can shrink them
// to avoid real sleeps.
var (
	// retryBackoff separates failed session attempts.
	retryBackoff = 5 * time.Second

	// renderTimeout bounds the wait for the first note on a page.
	renderTimeout = 20 * time.Second

	// settlePause follows each scroll so lazy content can load.
	settlePause = 3 * time.Second

	// pageTurnPause follows a next-page click before the new page is read.
	pageTurnPause = 3 * time.Second
)

// OpenReview walks the group listing for one conference on
// openreview.net, collecting a (title, PDF URL) pair per visible
// submission note.
type OpenReview struct {
	cfg       types.ScrapingConfig
	log       *zap.Logger
	newDriver driverFactory
}

func newOpenReview(cfg types.ScrapingConfig, log *zap.Logger) *OpenReview {
	return &OpenReview{cfg: cfg, log: log, newDriver: newChromeDriver}
}

// Name returns the platform name.
func (o *OpenReview) Name() string { return platformOpenReview }

// URL builds the group listing URL for the configured conference. The
// optional submission-type fragment selects a tab within the group page
// (R1.3).
func (o *OpenReview) URL() string {
	u := fmt.Sprintf("%s/group?id=%s.cc/%d/%s",
		openReviewBase, o.cfg.Conference, o.cfg.Year, o.cfg.Track)
	if o.cfg.SubmissionType != "" {
		u += "#" + o.cfg.SubmissionType
	}
	return u
}

// Fetch retrieves the full listing (R2). Every attempt runs in a fresh
// browser session; any error inside an attempt tears that session down
// and, while attempts remain, retries after a fixed backoff. Exhausting
// all attempts returns a *ScrapeError wrapping the last failure. No
// partial listing is ever returned: an incomplete walk cannot be told
// apart from a complete one, so only a clean pass counts.
func (o *OpenReview) Fetch(ctx context.Context) ([]types.ListingEntry, error) {
	var lastErr error

	for attempt := 1; attempt <= defaultMaxRetries; attempt++ {
		if attempt > 1 {
			o.log.Warn("retrying listing scrape",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", retryBackoff),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff):
			}
		}

		entries, err := o.attempt(ctx)
		if err == nil {
			return entries, nil
		}
		lastErr = err
	}

	return nil, &ScrapeError{Attempts: defaultMaxRetries, Err: lastErr}
}

// attempt performs one full pass over the listing in its own session.
// The session is released on every return path; teardown failures are
// logged, never propagated (R4.3).
func (o *OpenReview) attempt(ctx context.Context) ([]types.ListingEntry, error) {
	d, err := o.newDriver(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening browser session: %w", err)
	}
	defer func() {
		if cerr := d.Close(); cerr != nil {
			o.log.Warn("closing browser session", zap.Error(cerr))
		}
	}()

	url := o.URL()
	o.log.Info("fetching listing", zap.String("url", url))

	if err := d.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigating to %s: %w", url, err)
	}

	var entries []types.ListingEntry

	for page := 1; ; page++ {
		if err := d.WaitReady(noteSelector, renderTimeout); err != nil {
			return nil, fmt.Errorf("waiting for notes on page %d: %w", page, err)
		}

		if err := o.scrollToExhaustion(d); err != nil {
			return nil, fmt.Errorf("scrolling page %d: %w", page, err)
		}

		html, err := d.HTML()
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", page, err)
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return nil, fmt.Errorf("parsing page %d: %w", page, err)
		}

		pageEntries := o.extractEntries(doc)
		entries = append(entries, pageEntries...)
		o.log.Info("page scraped",
			zap.Int("page", page),
			zap.Int("entries", len(pageEntries)))

		// Absent or disabled arrow is the structural last-page signal.
		// A click failure is different: it gets one more chance after a
		// pause, then the walk ends with whatever was collected.
		if !hasNextPage(doc) {
			break
		}
		if err := o.turnPage(d); err != nil {
			o.log.Warn("pagination failed, treating as last page",
				zap.Int("page", page), zap.Error(err))
			break
		}
	}

	return entries, nil
}

// scrollToExhaustion drives lazy loading by scrolling to the bottom
// until the document height stops growing, giving up after
// maxScrollRounds on pages that keep feeding content (R3.1, R3.2).
func (o *OpenReview) scrollToExhaustion(d driver) error {
	height, err := d.ScrollHeight()
	if err != nil {
		return err
	}

	for round := 0; round < maxScrollRounds; round++ {
		if err := d.ScrollToBottom(); err != nil {
			return err
		}
		time.Sleep(settlePause)

		next, err := d.ScrollHeight()
		if err != nil {
			return err
		}
		if next == height {
			return nil
		}
		height = next
	}

	o.log.Debug("scroll cap reached", zap.Int("rounds", maxScrollRounds))
	return nil
}

// turnPage clicks the next-page arrow and pauses for the new page to
// render. A failed click is retried once after the same pause.
func (o *OpenReview) turnPage(d driver) error {
	err := d.Click(nextArrowSelector)
	if err != nil {
		o.log.Warn("next-page click failed, retrying once", zap.Error(err))
		time.Sleep(pageTurnPause)
		err = d.Click(nextArrowSelector)
	}
	if err != nil {
		return err
	}
	time.Sleep(pageTurnPause)
	return nil
}

// extractEntries pulls (title, PDF URL) pairs out of a listing page
// snapshot (R3.3). Notes missing a trimmed title or a download link are
// dropped: the site renders placeholder notes while content loads, and
// withdrawn submissions keep their title but lose the PDF.
func (o *OpenReview) extractEntries(doc *goquery.Document) []types.ListingEntry {
	var entries []types.ListingEntry

	doc.Find(noteSelector).Each(func(i int, note *goquery.Selection) {
		title := strings.TrimSpace(note.Find(titleSelector).First().Text())
		href, ok := note.Find(pdfLinkSelector).First().Attr("href")
		if title == "" || !ok {
			o.log.Debug("skipping note without title or PDF link", zap.Int("note", i))
			return
		}
		entries = append(entries, types.ListingEntry{
			Title:  title,
			PDFURL: absoluteURL(href),
		})
	})

	return entries
}

// hasNextPage reports whether the snapshot carries a usable next-page
// arrow. Absent or disabled arrows mark the last page (R3.4).
func hasNextPage(doc *goquery.Document) bool {
	arrow := doc.Find(nextArrowSelector).First()
	if arrow.Length() == 0 {
		return false
	}
	return !arrow.HasClass("disabled")
}

// absoluteURL resolves site-relative hrefs like /pdf?id=abc against the
// OpenReview origin.
func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return openReviewBase + href
}
