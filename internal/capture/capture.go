// Package capture renders confirmed-404 pages in a headless browser and
// returns viewport screenshots.
package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/firaterror/makina404/internal/pool"
)

// Options configures the capture engine.
type Options struct {
	// Pool bounds concurrent browser contexts. Each slot holds a full
	// browser execution context, so this pool is sized far smaller than
	// the probe pool.
	Pool *pool.Pool
	// Timeout bounds a single navigation plus screenshot. Longer than the
	// HTTP probe timeout because page rendering is slower than a GET.
	Timeout   time.Duration
	UserAgent string
}

// Engine owns one browser process, launched once and shared across all
// captures. Every Capture runs in its own isolated browsing context, so no
// mutable browser state is shared between concurrent captures.
type Engine struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	pool        *pool.Pool
	timeout     time.Duration

	// run executes the navigate-and-screenshot tasks; swapped in tests.
	run func(ctx context.Context, url string) ([]byte, error)
}

// New launches the browser allocator and verifies the browser actually
// starts. A launch failure is fatal to the run; the caller must Close the
// engine when the scan finishes.
func New(ctx context.Context, opts Options) (*Engine, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(1280, 800),
		chromedp.UserAgent(opts.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)

	e := &Engine{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		pool:        opts.Pool,
		timeout:     opts.Timeout,
	}
	e.run = e.runChromedp

	// Start a throwaway context so a missing or broken browser binary
	// surfaces now instead of on the first detection.
	testCtx, testCancel := chromedp.NewContext(allocCtx)
	testTimeoutCtx, testTimeoutCancel := context.WithTimeout(testCtx, 10*time.Second)
	err := chromedp.Run(testTimeoutCtx)
	testTimeoutCancel()
	testCancel()
	if err != nil {
		allocCancel()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	return e, nil
}

// Capture acquires a capture-pool slot, renders url in a fresh isolated
// browsing context, and returns the viewport raster. The context and the
// slot are released on every exit path, context first. Navigation errors
// are returned to the caller and are non-fatal to the pipeline.
func (e *Engine) Capture(ctx context.Context, url string) ([]byte, error) {
	if err := e.pool.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("capture cancelled: %w", err)
	}
	defer e.pool.Release()

	shot, err := e.run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", url, err)
	}
	if len(shot) == 0 {
		return nil, fmt.Errorf("screenshot %s: empty capture", url)
	}
	return shot, nil
}

func (e *Engine) runChromedp(ctx context.Context, url string) ([]byte, error) {
	// Fresh browsing context per capture; cancel closes the page and the
	// context together, before the pool slot is released by the caller.
	tabCtx, tabCancel := chromedp.NewContext(e.allocCtx)
	defer tabCancel()

	navCtx, navCancel := context.WithTimeout(tabCtx, e.timeout)
	defer navCancel()

	// WaitReady fires at DOM readiness rather than full load, bounding
	// latency on pages with slow background requests. Scripts stay
	// enabled since many 404 pages render their content dynamically.
	var buf []byte
	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Close tears down the shared browser process. Safe to call after a
// partial startup.
func (e *Engine) Close() {
	e.allocCancel()
}
