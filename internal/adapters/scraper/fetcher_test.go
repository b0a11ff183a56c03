package scraper

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tiktok-stats/internal/domain"
	"tiktok-stats/internal/extractor"
	"tiktok-stats/test/fixtures"
)

func newTestFetcher(render renderFunc) *BrowserFetcher {
	f := NewBrowserFetcher(newTestBrowserPool(1), "", time.Second)
	f.render = render
	return f
}

func TestBrowserFetcher_Fetch_RendersMarkdown(t *testing.T) {
	// Arrange
	var gotURL string
	f := newTestFetcher(func(ctx context.Context, pageURL string) (string, error) {
		gotURL = pageURL
		return fixtures.GenerateProfilePage(), nil
	})

	// Act
	text, err := f.Fetch(context.Background(), "creator", "ignored")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotURL != "https://www.tiktok.com/@creator" {
		t.Errorf("url: got %q", gotURL)
	}
	if strings.Contains(text, "<strong>") {
		t.Errorf("markdown still contains HTML: %q", text)
	}
	stats := extractor.New().Extract(text)
	want := domain.ProfileStats{FollowingCount: "312", FollowersCount: "4.8M", LikesCount: "102.3M"}
	if stats != want {
		t.Errorf("stats from rendered markdown: got %+v, want %+v\nmarkdown:\n%s", stats, want, text)
	}
}

func TestBrowserFetcher_Fetch_BlankPage_EmptyContent(t *testing.T) {
	f := newTestFetcher(func(ctx context.Context, pageURL string) (string, error) {
		return fixtures.GenerateEmptyPage(), nil
	})

	_, err := f.Fetch(context.Background(), "creator", "")

	var failure *domain.FetchFailure
	if !errors.As(err, &failure) || failure.Kind != domain.FailureEmptyContent {
		t.Errorf("expected empty_content failure, got %v", err)
	}
}

func TestBrowserFetcher_Fetch_RenderErrors(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want domain.FailureKind
	}{
		{"deadline", context.DeadlineExceeded, domain.FailureTimeout},
		{"navigation", errors.New("net::ERR_NAME_NOT_RESOLVED"), domain.FailureTransport},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTestFetcher(func(ctx context.Context, pageURL string) (string, error) {
				return "", tc.err
			})

			_, err := f.Fetch(context.Background(), "creator", "")

			var failure *domain.FetchFailure
			if !errors.As(err, &failure) {
				t.Fatalf("expected FetchFailure, got %v", err)
			}
			if failure.Kind != tc.want {
				t.Errorf("Kind: got %s, want %s", failure.Kind, tc.want)
			}
			if !errors.Is(err, tc.err) {
				t.Error("render error should be wrapped")
			}
		})
	}
}

func TestBrowserFetcher_Fetch_SlowRender_TimesOut(t *testing.T) {
	// Arrange
	f := newTestFetcher(func(ctx context.Context, pageURL string) (string, error) {
		<-ctx.Done()
		return "", errors.New("page load aborted")
	})
	f.timeout = 20 * time.Millisecond

	// Act
	_, err := f.Fetch(context.Background(), "creator", "")

	// Assert
	var failure *domain.FetchFailure
	if !errors.As(err, &failure) || failure.Kind != domain.FailureTimeout {
		t.Errorf("expected timeout failure, got %v", err)
	}
}
