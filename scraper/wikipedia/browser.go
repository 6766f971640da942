package wikipedia

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"spotify-records/utils"
)

// BrowserFetcher loads the page in headless Chrome and returns the rendered document.
type BrowserFetcher struct {
	userAgent string
	chromeBin string
	timeout   time.Duration
	logger    *utils.Logger
}

// NewBrowserFetcher creates a BrowserFetcher. An empty chromeBin triggers auto-detection.
func NewBrowserFetcher(userAgent, chromeBin string, timeout time.Duration, logger *utils.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		userAgent: userAgent,
		chromeBin: chromeBin,
		timeout:   timeout,
		logger:    logger,
	}
}

// Fetch navigates to url. The main document must answer 200, as with HTTPFetcher.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	chromeBin := f.chromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	f.logger.Info("[fetcher] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	if f.timeout > 0 {
		var cancelTimeout context.CancelFunc
		browserCtx, cancelTimeout = context.WithTimeout(browserCtx, f.timeout)
		defer cancelTimeout()
	}

	res, err := chromedp.RunResponse(browserCtx, chromedp.Navigate(url))
	if err != nil {
		return "", fmt.Errorf("fetcher: navigate %s: %w", url, err)
	}
	if res == nil || res.Status != http.StatusOK {
		status := 0
		if res != nil {
			status = int(res.Status)
		}
		return "", &FetchError{URL: url, StatusCode: status}
	}

	var html string
	if err := chromedp.Run(browserCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("fetcher: read document %s: %w", url, err)
	}

	f.logger.Debug("[fetcher] %s rendered (%d bytes)", url, len(html))
	return html, nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
