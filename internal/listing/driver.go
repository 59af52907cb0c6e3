// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package listing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// driver abstracts the browser session so the page walk can be tested
// with scripted fakes. A driver wraps one live tab and is not safe for
// concurrent use.
type driver interface {
	// Navigate loads url in the session's tab.
	Navigate(url string) error

	// WaitReady blocks until an element matching sel is visible or the
	// timeout elapses.
	WaitReady(sel string, timeout time.Duration) error

	// ScrollHeight returns the current document scroll height in pixels.
	ScrollHeight() (int64, error)

	// ScrollToBottom scrolls the window to the bottom of the document.
	ScrollToBottom() error

	// HTML returns the serialized DOM of the current page.
	HTML() (string, error)

	// Click dispatches a click on the first element matching sel.
	Click(sel string) error

	// Close tears down the session. Safe to call more than once.
	Close() error
}

// driverFactory opens a fresh browser session bound to ctx. Each scrape
// attempt gets its own session through this seam.
type driverFactory func(ctx context.Context) (driver, error)

// chromeDriver is the production driver backed by headless Chrome.
type chromeDriver struct {
	ctx       context.Context
	cancel    context.CancelFunc
	stopAlloc context.CancelFunc
	closeOnce sync.Once
	closeErr  error
}

// newChromeDriver launches a headless browser and opens one tab. The
// caller owns the returned driver and must Close it.
func newChromeDriver(ctx context.Context) (driver, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, stopAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx)

	// Run with no actions launches the browser immediately, so a missing
	// or broken Chrome install fails the attempt here rather than on the
	// first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		stopAlloc()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	return &chromeDriver{ctx: tabCtx, cancel: cancel, stopAlloc: stopAlloc}, nil
}

func (d *chromeDriver) Navigate(url string) error {
	return chromedp.Run(d.ctx, chromedp.Navigate(url))
}

func (d *chromeDriver) WaitReady(sel string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(d.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.WaitVisible(sel, chromedp.ByQuery))
}

func (d *chromeDriver) ScrollHeight() (int64, error) {
	var height int64
	err := chromedp.Run(d.ctx, chromedp.Evaluate(`document.body.scrollHeight`, &height))
	return height, err
}

func (d *chromeDriver) ScrollToBottom() error {
	return chromedp.Run(d.ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil))
}

func (d *chromeDriver) HTML() (string, error) {
	var html string
	err := chromedp.Run(d.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (d *chromeDriver) Click(sel string) error {
	return chromedp.Run(d.ctx, chromedp.Click(sel, chromedp.ByQuery))
}

// Close shuts down the tab and the browser process. Repeated calls
// return the first result.
func (d *chromeDriver) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = chromedp.Cancel(d.ctx)
		d.cancel()
		d.stopAlloc()
	})
	return d.closeErr
}
