package retrieve

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserRenderer renders pages in headless Chrome. Each call launches its own
// browser process, which is torn down before Render returns.
// Requires Chrome/Chromium to be installed on the system.
type BrowserRenderer struct {
	// ExecPath overrides the Chrome binary lookup when set.
	ExecPath string

	UserAgent string

	// Settle is a pause after the body is ready, for client-side rendering.
	Settle time.Duration
}

func (b BrowserRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if b.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.ExecPath))
	}
	if b.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.UserAgent))
	}
	return opts
}

func (b BrowserRenderer) Render(ctx context.Context, url string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if b.Settle > 0 {
		actions = append(actions, chromedp.Sleep(b.Settle))
	}

	var text string
	actions = append(actions, chromedp.Text("body", &text, chromedp.ByQuery))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}
	return text, nil
}
