package scraper

import (
	"context"
	"sync"

	"github.com/chromedp/chromedp"

	"tiktok-stats/pkg/log"
)

// allocatorFunc creates the allocator context a browser runs under.
type allocatorFunc func(ctx context.Context) (context.Context, context.CancelFunc)

// BrowserPool manages a single Chrome process and enforces
// serialized tab usage (1 tab at a time).
type BrowserPool struct {
	newAllocator allocatorFunc
	ctx          context.Context
	cancel       context.CancelFunc

	mu    sync.Mutex
	slots tabSlots

	// openTab is acquireTab outside of tests.
	openTab func() (context.Context, context.CancelFunc, error)
}

// NewBrowserPool launches a local headless Chrome. An empty chromePath uses
// the browser found on PATH.
func NewBrowserPool(chromePath string, options ...chromedp.ExecAllocatorOption) (*BrowserPool, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		// Core
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),

		// Memory / CPU reduction
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("lang", "en-US"),
	)
	opts = append(opts, options...)

	if chromePath != "" {
		log.GlobalInfo("browser pool using custom chrome path", "path", chromePath)
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	return newPool(func(ctx context.Context) (context.Context, context.CancelFunc) {
		return chromedp.NewExecAllocator(ctx, opts...)
	})
}

// NewRemoteBrowserPool attaches to an already running Chrome through its
// DevTools websocket URL.
func NewRemoteBrowserPool(wsURL string) (*BrowserPool, error) {
	return newPool(func(ctx context.Context) (context.Context, context.CancelFunc) {
		return chromedp.NewRemoteAllocator(ctx, wsURL)
	})
}

func newPool(alloc allocatorFunc) (*BrowserPool, error) {
	bp := &BrowserPool{
		newAllocator: alloc,
		slots:        newTabSlots(1),
	}
	bp.openTab = bp.acquireTab

	if err := bp.start(); err != nil {
		return nil, err
	}

	return bp, nil
}

// start initializes or restarts the Chrome process.
func (bp *BrowserPool) start() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.cancel != nil {
		bp.cancel()
	}

	allocCtx, cancelAlloc := bp.newAllocator(context.Background())
	ctx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Force Chrome startup
	if err := chromedp.Run(ctx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return err
	}

	bp.ctx = ctx
	bp.cancel = func() {
		cancelBrowser()
		cancelAlloc()
	}

	log.GlobalInfo("browser pool chrome started")
	return nil
}

// WithTab runs fn with exclusive access to a fresh tab. Waiting for the tab
// honors ctx, and the tab context is canceled when ctx is done.
func (bp *BrowserPool) WithTab(ctx context.Context, fn func(tabCtx context.Context) error) error {
	if err := bp.slots.acquire(ctx); err != nil {
		return err
	}
	defer bp.slots.release()

	tabCtx, tabCancel, err := bp.openTab()
	if err != nil {
		return err
	}
	defer tabCancel()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		tabCtx, cancelDeadline = context.WithDeadline(tabCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	return fn(tabCtx)
}

// acquireTab creates a new browser tab and performs a health check.
// If the browser is unhealthy, it restarts Chrome and creates a new tab.
func (bp *BrowserPool) acquireTab() (context.Context, context.CancelFunc, error) {
	bp.mu.Lock()
	tabCtx, tabCancel := chromedp.NewContext(bp.ctx)
	bp.mu.Unlock()

	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()

		log.GlobalWarn("browser pool tab failed, restarting chrome", "error", err.Error())

		if restartErr := bp.start(); restartErr != nil {
			return nil, nil, restartErr
		}

		bp.mu.Lock()
		tabCtx, tabCancel = chromedp.NewContext(bp.ctx)
		bp.mu.Unlock()
	}

	return tabCtx, tabCancel, nil
}

// Close shuts down the browser completely.
func (bp *BrowserPool) Close() {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.cancel != nil {
		bp.cancel()
		bp.cancel = nil
		log.GlobalInfo("browser pool chrome stopped")
	}
}

// tabSlots is a counting semaphore bounding open tabs.
type tabSlots chan struct{}

func newTabSlots(n int) tabSlots {
	return make(tabSlots, n)
}

func (s tabSlots) acquire(ctx context.Context) error {
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s tabSlots) release() {
	<-s
}
