package content

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer fetches pages through a headless browser, for hosts that build
// the page with javascript and serve an empty shell over plain HTTP
type Renderer struct {
	timeout   time.Duration
	wait      time.Duration
	userAgent string
}

// NewRenderer creates a headless browser fetcher
func NewRenderer(timeout time.Duration, userAgent string) *Renderer {
	return &Renderer{
		timeout:   timeout,
		wait:      2 * time.Second, // let late scripts fill the readme container
		userAgent: userAgent,
	}
}

// Fetch navigates to the page, waits for scripts to settle and returns the
// rendered HTML
func (r *Renderer) Fetch(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(r.userAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.wait),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", pageURL, err)
	}
	return html, nil
}
