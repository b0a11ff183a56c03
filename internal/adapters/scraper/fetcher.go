// Package scraper renders profile pages in a headless browser and turns them
// into markdown.
package scraper

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/chromedp/chromedp"

	"tiktok-stats/internal/domain"
	"tiktok-stats/pkg/log"
)

const (
	DefaultProfileBaseURL = "https://www.tiktok.com/@"
	DefaultTimeout        = 30 * time.Second
)

// TabRunner gives exclusive access to a browser tab.
type TabRunner interface {
	WithTab(ctx context.Context, fn func(tabCtx context.Context) error) error
}

// renderFunc loads pageURL in a tab and returns the page HTML.
type renderFunc func(ctx context.Context, pageURL string) (string, error)

// BrowserFetcher loads profiles in headless Chrome. It needs no credential.
type BrowserFetcher struct {
	profileBaseURL string
	timeout        time.Duration
	render         renderFunc
	conv           *converter.Converter
}

// NewBrowserFetcher creates a fetcher that renders pages with pool.
func NewBrowserFetcher(pool TabRunner, profileBaseURL string, timeout time.Duration) *BrowserFetcher {
	if profileBaseURL == "" {
		profileBaseURL = DefaultProfileBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &BrowserFetcher{
		profileBaseURL: profileBaseURL,
		timeout:        timeout,
		render:         chromeRender(pool),
		conv:           newMarkdownConverter(),
	}
}

func chromeRender(pool TabRunner) renderFunc {
	return func(ctx context.Context, pageURL string) (string, error) {
		var html string
		err := pool.WithTab(ctx, func(tabCtx context.Context) error {
			return chromedp.Run(tabCtx,
				chromedp.Navigate(pageURL),
				chromedp.WaitReady("body", chromedp.ByQuery),
				chromedp.OuterHTML("html", &html),
			)
		})
		return html, err
	}
}

// Fetch renders the profile page and converts it to markdown. The credential
// is ignored. Failures are *domain.FetchFailure.
func (f *BrowserFetcher) Fetch(ctx context.Context, targetID, _ string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	pageURL := f.profileBaseURL + url.PathEscape(targetID)

	html, err := f.render(ctx, pageURL)
	if err != nil {
		return "", browserFailure(ctx, err)
	}

	log.GlobalDebugCtx(ctx, "profile page rendered",
		"bytes", len(html),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	markdown, err := toMarkdown(f.conv, html, domainOf(pageURL))
	if err != nil {
		return "", domain.NewFetchFailure(0, domain.FailureInvalidContent, "rendered page could not be converted", err)
	}
	if strings.TrimSpace(markdown) == "" {
		return "", domain.NewFetchFailure(0, domain.FailureEmptyContent, "rendered page has no text", nil)
	}

	return markdown, nil
}

// browserFailure maps a render error. A done context or a deadline anywhere
// in the chain counts as a timeout.
func browserFailure(ctx context.Context, err error) *domain.FetchFailure {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewFetchFailure(0, domain.FailureTimeout, "browser render timed out", err)
	}
	return domain.NewFetchFailure(0, domain.FailureTransport, "browser render failed", err)
}

func domainOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return u.Host
}
